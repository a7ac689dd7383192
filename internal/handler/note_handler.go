package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"notesaides-api/internal/domain"
	"notesaides-api/internal/middleware"
	"notesaides-api/internal/service"
	"notesaides-api/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.service.Create(userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create note")
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	notes, err := h.service.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list notes")
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	note, err := h.service.GetByID(userID, noteID)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to get note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.service.Update(userID, noteID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to update note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if err := h.service.Delete(userID, noteID); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to delete note")
		return
	}

	response.Success(w, map[string]string{"message": "Note deleted successfully"})
}
