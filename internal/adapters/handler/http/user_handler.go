package http

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
	logger  logrus.FieldLogger
}

func NewUserHandler(service ports.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// GetMe godoc
// @Summary      Current user
// @Description  Returns the user the bearer token belongs to.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.PublicUser
// @Failure      401  {object}  messageResponse
// @Router       /api/auth/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
