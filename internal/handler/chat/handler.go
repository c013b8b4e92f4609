package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatmodel "chat-ai-api/internal/model/chat"
	chatservice "chat-ai-api/internal/service/chat"
	"chat-ai-api/pkg/utils"
)

// internalErrorMessage is the single opaque message returned for any failure
// that is not a validation or not-found condition. Detail goes to the log.
const internalErrorMessage = "internal server error"

// Handler exposes the registration, chat and history endpoints.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the chat HTTP handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the three endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register-user", h.handleRegisterUser)
	r.Post("/chat", h.handleChat)
	r.Post("/get-messages", h.handleGetMessages)
}

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.Email) == "" {
		utils.RespondError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	user, err := h.chatSvc.Register(r.Context(), strings.TrimSpace(payload.Name), payload.Email)
	if err != nil {
		log.Printf("[handler] register-user failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"userId": user.UserID,
		"name":   user.Name,
		"email":  user.Email,
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.UserID) == "" || strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "UserId and message are required")
		return
	}

	reply, err := h.chatSvc.Send(r.Context(), payload.UserID, payload.Message)
	if err != nil {
		switch {
		case errors.Is(err, chatservice.ErrUserNotRegistered),
			errors.Is(err, chatservice.ErrUserNotInDatabase):
			utils.RespondError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("[handler] chat failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *Handler) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.UserID) == "" {
		utils.RespondError(w, http.StatusBadRequest, "UserId is required")
		return
	}

	turns, err := h.chatSvc.History(r.Context(), payload.UserID)
	if err != nil {
		log.Printf("[handler] get-messages failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	if turns == nil {
		turns = []chatmodel.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": turns})
}
