package handler

import (
	"errors"
	"net/http"

	"notesaides-api/internal/middleware"
	"notesaides-api/internal/service"
	"notesaides-api/pkg/response"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	user, err := h.userService.GetByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalError(w, "Failed to load user")
		return
	}

	response.Success(w, user)
}
