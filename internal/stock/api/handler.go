package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shop-bot/internal/database"
	"shop-bot/internal/stock"
	"shop-bot/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	StockService *stock.StockService
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, database.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, database.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrItemExists):
		return http.StatusConflict
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

func (h *Handler) ListStock(w http.ResponseWriter, r *http.Request) {
	sets, err := h.StockService.Stock()
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not list stock", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Stock listing", sets))
}

func (h *Handler) SearchStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.StockService.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not search stock", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Stock search results", entries))
}

type addItemRequest struct {
	Set      string `json:"set"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	item, err := h.StockService.AddItem(actor, req.Set, req.Name, req.Price, req.Quantity)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not add item", err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Item added", item))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	var patch stock.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	update, err := h.StockService.UpdateItem(actor, chi.URLParam(r, "itemId"), patch)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not update item", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Item updated", update))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	item, err := h.StockService.RemoveItem(actor, chi.URLParam(r, "itemId"))
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not remove item", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Item removed", item))
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	item, err := h.StockService.Restock(actor, chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not restock item", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Item restocked", item))
}

type fillRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) FillStock(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	var req fillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.StockService.FillStock(actor, req.Quantity); err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not fill stock", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Stock filled", nil))
}

func (h *Handler) ClearStock(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	if err := h.StockService.ClearStock(actor); err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not clear stock", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Stock cleared", nil))
}

// RegisterRoutes mounts the stock endpoints on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/stock", h.ListStock)
	r.Get("/api/stock/search", h.SearchStock)
	r.Post("/api/stock", h.AddItem)
	r.Put("/api/stock/{itemId}", h.UpdateItem)
	r.Delete("/api/stock/{itemId}", h.RemoveItem)
	r.Post("/api/stock/{itemId}/restock", h.Restock)
	r.Post("/api/stock/fill", h.FillStock)
	r.Post("/api/stock/clear", h.ClearStock)
}
