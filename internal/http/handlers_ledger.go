package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"floatdesk/internal/core"
)

type amountRequest struct {
	Amount core.Money `json:"amount"`
}

type balanceRequest struct {
	Channel string     `json:"channel"`
	Amount  core.Money `json:"amount"`
}

type debtRequest struct {
	Debtor string     `json:"debtor"`
	Amount core.Money `json:"amount"`
}

type incomeRequest struct {
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
}

type commissionRequest struct {
	Service string     `json:"service"`
	Amount  core.Money `json:"amount"`
	Month   string     `json:"month"`
}

type aggregateResponse struct {
	core.Aggregate
	TotalBalance core.Money `json:"totalBalance"`
}

type settleResponse struct {
	Debt   core.Debt   `json:"debt"`
	Income core.Income `json:"income"`
}

// handleIndex returns the full ledger snapshot with its derived total.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondErrorMessage(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	agg, err := s.ledger.Aggregate(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, aggregateResponse{
		Aggregate:    agg,
		TotalBalance: agg.TotalBalance(),
	})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		agg, err := s.ledger.Aggregate(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, agg.Channels)
	case http.MethodPost:
		var req balanceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		balance, err := s.ledger.SetChannelBalance(r.Context(), req.Channel, req.Amount)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, balance)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCash(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}

	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.ledger.SetCashAtHand(r.Context(), req.Amount); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		agg, err := s.ledger.Aggregate(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, agg.Debts)
	case http.MethodPost:
		var req debtRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		debt, err := s.ledger.RecordDebt(r.Context(), req.Debtor, req.Amount)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, debt)
	default:
		methodNotAllowed(w)
	}
}

// handleSettleDebt serves PUT /debts/{id}. Settling is the only mutation
// allowed on an existing debt.
func (s *Server) handleSettleDebt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}

	rawID := strings.TrimPrefix(r.URL.Path, "/debts/")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		respondErrorMessage(w, http.StatusNotFound, "Not found")
		return
	}

	debt, income, err := s.ledger.SettleDebt(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settleResponse{Debt: debt, Income: income})
}

func (s *Server) handleIncomes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		agg, err := s.ledger.Aggregate(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, agg.Incomes)
	case http.MethodPost:
		var req incomeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		income, err := s.ledger.RecordIncome(r.Context(), req.Description, req.Amount)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, income)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCommissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		commissions, err := s.ledger.ListCommissions(r.Context(), r.URL.Query().Get("month"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, commissions)
	case http.MethodPost:
		var req commissionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		commission, err := s.ledger.RecordCommission(r.Context(), req.Service, req.Amount, req.Month)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, commission)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	stats, err := s.ledger.DashboardStats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleReady verifies the storage dependency with a lightweight read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.ledger.Aggregate(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
