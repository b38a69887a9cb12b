package core

import (
	"errors"
	"testing"
)

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"R$12,34", 1234, true},
		{"r$ 12.34", 1234, true},
		{"$ 99,90", 9990, true},
		{"Almoço: 45,50", 4550, true},
		{"Gasolina: 50 reais", 5000, true},
		{"paguei 1 real", 100, true},
		{"cinema 30,00 reais", 3000, true},
		{"mercado 120,75 hoje", 12075, true},
		{"comprei 3 itens", 0, false}, // bare integer, no currency word
		{"sem valor nenhum", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ExtractAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.cents {
				t.Fatalf("%q expected %d cents, got %d (err=%v)", tc.in, tc.cents, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected no amount, got %d cents", tc.in, got.Cents)
			}
		}
	}
}

func TestExtractAmountNotFoundIsDistinctFromZero(t *testing.T) {
	_, err := ExtractAmount("comprei 3 itens")
	if !errors.Is(err, ErrNoAmount) {
		t.Fatalf("expected ErrNoAmount, got %v", err)
	}
}

func TestExtractAmountPriorityOrder(t *testing.T) {
	// The currency-prefixed decimal pattern wins over the reais-suffixed
	// integer even when the integer appears first in the text.
	got, err := ExtractAmount("5 reais de troco, paguei R$20,00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cents != 2000 {
		t.Fatalf("expected 2000 cents, got %d", got.Cents)
	}
}

func TestExtractAmountFirstMatchWins(t *testing.T) {
	got, err := ExtractAmount("almoço 12,00 e café 5,50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cents != 1200 {
		t.Fatalf("expected first match 1200 cents, got %d", got.Cents)
	}
}

func TestStripAmountTokens(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Gasolina: 50 reais", "Gasolina:"},
		{"Almoço: 45,50", "Almoço:"},
		{"Presente para mãe: 120 reais", "Presente para mãe:"},
		{"R$12,34 padaria", "padaria"},
	}
	for _, tc := range cases {
		if got := StripAmountTokens(tc.in); got != tc.want {
			t.Fatalf("%q expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
