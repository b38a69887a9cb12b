package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"gastobot/internal/core"
	applog "gastobot/internal/log"
	"gastobot/internal/whapi"
)

// handleVerifyWebhook answers the provider's subscription handshake: echo
// the challenge when the verify token matches, 403 otherwise.
func (s *Server) handleVerifyWebhook(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if s.webhookSecret == "" || token != s.webhookSecret {
		slog.WarnContext(r.Context(), "Webhook verification rejected")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// handleWebhook processes one delivery. A payload without messages is
// acknowledged and dropped; only unexpected internal faults surface as 500.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload whapi.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.WarnContext(r.Context(), "Malformed webhook payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if len(payload.Messages) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	mutated, err := s.processor.ProcessWebhook(r.Context(), payload.Messages)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Webhook processing failed",
			applog.FieldError, err.Error(),
			applog.FieldComponent, applog.ComponentWebhook,
			applog.FieldBatchSize, len(payload.Messages))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	for _, userID := range mutated {
		s.userDataCache.Delete(userID)
	}

	w.WriteHeader(http.StatusOK)
}

type statusResponse struct {
	Status            string `json:"status"`
	TotalExpenses     int    `json:"totalExpenses"`
	TotalInstallments int    `json:"totalInstallments"`
}

// handleStatus reports aggregate counts over the whole ledger. The
// installment count is users with at least one plan, matching the shape the
// dashboard consumes.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Load(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger load failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:            "online",
		TotalExpenses:     len(l.Expenses),
		TotalInstallments: len(l.Installments),
	})
}

type userDataResponse struct {
	Expenses     []core.Expense                  `json:"expenses"`
	Installments map[string]core.InstallmentPlan `json:"installments"`
}

// handleUserData returns one user's raw expenses and installment plans.
// Responses are cached per user until a webhook mutates that user or the
// TTL lapses.
func (s *Server) handleUserData(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	if body, ok := s.userDataCache.Get(userID); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	l, err := s.store.Load(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger load failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	expenses := l.UserExpenses(userID)
	if expenses == nil {
		expenses = []core.Expense{}
	}
	plans := l.UserInstallments(userID)
	if plans == nil {
		plans = map[string]core.InstallmentPlan{}
	}

	body, err := json.Marshal(userDataResponse{Expenses: expenses, Installments: plans})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.userDataCache.Set(userID, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
