package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"shop-bot/internal/database"
	"shop-bot/internal/models"
	"shop-bot/internal/tickets"
	"shop-bot/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	TicketService *tickets.TicketService
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, database.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, database.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicateTicket):
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

func channelID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "channelId"), 10, 64)
}

type createRequest struct {
	ChannelID int64                    `json:"channel_id"`
	Category  string                   `json:"category"`
	Payload   *tickets.PurchasePayload `json:"payload,omitempty"`
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.TicketService.Create(r.Context(), actor, req.ChannelID, req.Category, req.Payload)
	if err != nil {
		var dup *tickets.DuplicateTicketError
		if errors.As(err, &dup) {
			writeJSON(w, http.StatusConflict, utils.ErrorResponseWithData(
				"User already has an open ticket in this category",
				err.Error(),
				map[string]int64{"existing_channel_id": dup.ExistingChannelID},
			))
			return
		}
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not create ticket", err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Ticket created", result))
}

type closeRequest struct {
	ConfirmInfo string `json:"confirm_info"`
}

func (h *Handler) CloseTicket(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	id, err := channelID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid channel id", err.Error()))
		return
	}

	var req closeRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.TicketService.Close(actor, id, req.ConfirmInfo)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not close ticket", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket closed", result))
}

func (h *Handler) ReopenTicket(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	id, err := channelID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid channel id", err.Error()))
		return
	}

	result, err := h.TicketService.Reopen(actor, id)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not reopen ticket", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket reopened", result))
}

func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	id, err := channelID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid channel id", err.Error()))
		return
	}

	result, err := h.TicketService.Delete(actor, id)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not delete ticket", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket deleted", result))
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) RenameTicket(w http.ResponseWriter, r *http.Request) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	id, err := channelID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid channel id", err.Error()))
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.TicketService.Rename(actor, id, req.Name)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not rename ticket", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket renamed", result))
}

type memberRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	h.memberChange(w, r, h.TicketService.AddUser, "User added to ticket")
}

func (h *Handler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	h.memberChange(w, r, h.TicketService.RemoveUser, "User removed from ticket")
}

func (h *Handler) memberChange(w http.ResponseWriter, r *http.Request, op func(actor models.Actor, channelID, userID int64) (*tickets.MemberChange, error), message string) {
	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid actor headers", err.Error()))
		return
	}

	id, err := channelID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid channel id", err.Error()))
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := op(actor, id, req.UserID)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not change ticket members", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(message, result))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid channel id", err.Error()))
		return
	}

	ticket, err := h.TicketService.Get(id)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Ticket not found", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket", ticket))
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("open") == "true"
	list, err := h.TicketService.List(openOnly)
	if err != nil {
		writeJSON(w, statusForError(err), utils.ErrorResponse("Could not list tickets", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Tickets", list))
}

// RegisterRoutes mounts the ticket endpoints on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/tickets", h.ListTickets)
	r.Post("/api/tickets", h.CreateTicket)
	r.Get("/api/tickets/{channelId}", h.GetTicket)
	r.Post("/api/tickets/{channelId}/close", h.CloseTicket)
	r.Post("/api/tickets/{channelId}/reopen", h.ReopenTicket)
	r.Delete("/api/tickets/{channelId}", h.DeleteTicket)
	r.Post("/api/tickets/{channelId}/rename", h.RenameTicket)
	r.Post("/api/tickets/{channelId}/add-user", h.AddUser)
	r.Post("/api/tickets/{channelId}/remove-user", h.RemoveUser)
}
