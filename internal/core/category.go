package core

import "strings"

// CategoryOther is the fallback label when no keyword matches.
const CategoryOther = "Outros"

// categoryRule pairs a category label with the keywords that select it.
type categoryRule struct {
	Label    string
	Keywords []string
}

// categoryRules is scanned top to bottom; the first category with a keyword
// found anywhere in the lower-cased text wins. Declaration order is the
// tie-break rule and must not be reordered.
var categoryRules = []categoryRule{
	{Label: "Combustível", Keywords: []string{"gasolina", "diesel", "etanol", "posto", "abastec", "combustivel"}},
	{Label: "Comida", Keywords: []string{"comida", "almoço", "café", "pizza", "hambur", "restaurante", "lanche", "sorvete", "sushi", "refeição", "prato", "sanduíche"}},
	{Label: "Entretenimento", Keywords: []string{"cinema", "show", "jogo", "filme", "diversão", "hobby", "presente", "livro", "música", "streaming"}},
	{Label: "Transporte", Keywords: []string{"uber", "taxi", "passagem", "ônibus", "metrô", "estacionamento", "moto"}},
	{Label: "Saúde", Keywords: []string{"farmácia", "médico", "hospital", "consulta", "remédio", "medicamento", "saúde", "academia", "gym"}},
	{Label: "Shopping", Keywords: []string{"roupa", "calçado", "sapato", "camiseta", "calça", "vestido", "moda", "loja", "compra", "produto"}},
	{Label: "Contas", Keywords: []string{"energia", "água", "internet", "telefone", "conta", "boleto", "aluguel", "condomínio"}},
	{Label: "Educação", Keywords: []string{"curso", "aula", "escola", "universidade", "educação", "material", "livro", "apostila"}},
}

// Categories returns the fixed set of labels an expense can carry,
// in declaration order plus the fallback.
func Categories() []string {
	out := make([]string, 0, len(categoryRules)+1)
	for _, r := range categoryRules {
		out = append(out, r.Label)
	}
	return append(out, CategoryOther)
}

// DetectCategory maps free text to exactly one category label.
// It is total: any input yields a label, defaulting to Outros.
func DetectCategory(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Label
			}
		}
	}
	return CategoryOther
}
