package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"shop-bot/internal/accounting"
	"shop-bot/internal/database"
	"shop-bot/internal/stats"
	"shop-bot/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	AccountingService *accounting.AccountingService
	StatsService      *stats.Service
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, database.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, database.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrOutOfStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func userID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
}

// LogPurchase commits a purchase directly, outside the ticket flow.
// Staff use this for sales that never had a ticket.
func (h *Handler) LogPurchase(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	var req accounting.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	receipt, err := h.AccountingService.LogPurchase(actor, req)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not log purchase", err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Purchase logged", receipt))
}

func (h *Handler) CustomerSummary(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid user id", err.Error()))
		return
	}

	summary, err := h.AccountingService.Summary(id)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not compute summary", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Customer summary", summary))
}

func (h *Handler) CustomerHistory(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid user id", err.Error()))
		return
	}

	logs, err := h.AccountingService.History(id)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not fetch history", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Customer history", logs))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Shop stats", h.StatsService.Current()))
}

// RegisterRoutes mounts the accounting endpoints on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/logs", h.LogPurchase)
	r.Get("/api/logs/{userId}", h.CustomerHistory)
	r.Get("/api/logs/{userId}/summary", h.CustomerSummary)
	r.Get("/api/stats", h.Stats)
}
