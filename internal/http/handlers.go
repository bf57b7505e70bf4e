package http

import (
	"context"
	"net/http"
	"time"

	"spending/internal/core"
)

type deleteResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

type currenciesResponse struct {
	Reference string             `json:"reference"`
	Default   string             `json:"default"`
	Supported []string           `json:"supported"`
	Rates     map[string]float64 `json:"rates"`
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"uptime":             time.Since(s.started).Round(time.Second).String(),
		"requests":           metrics.TotalRequests,
		"avg_response_us":    metrics.AverageResponseTime,
		"rate_limited_total": s.rateLimiter.Hits(),
	})
}

// handleReady reports whether the store answers within a few seconds.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "database": "ok"})
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := s.summaries.GetChildren(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if children == nil {
		children = []core.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (s *Server) handleGetChild(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	child, err := s.summaries.GetChild(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

func (s *Server) handleChildExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	expenses, err := s.summaries.GetExpensesByChild(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleChildTotal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	summary, err := s.summaries.GetTotals(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currenciesResponse{
		Reference: s.currencies.Reference(),
		Default:   s.currencies.DefaultCode(),
		Supported: s.currencies.SupportedCodes(),
		Rates:     s.currencies.Rates(),
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	created, err := s.expenses.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var patch core.ExpensePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeDecodeError(w, err)
		return
	}

	updated, err := s.expenses.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if _, err := s.expenses.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Status: "success", ID: id})
}

// handleVerifyPIN only runs once the admin middleware accepted the PIN.
func (s *Server) handleVerifyPIN(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
