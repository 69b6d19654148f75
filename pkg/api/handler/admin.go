package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dskvich/amethyst-telegram-bot/pkg/api/response"
	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
)

type StatusStore interface {
	Read(ctx context.Context) (domain.BotStatus, error)
	Write(ctx context.Context, status domain.BotStatus) error
}

type Authenticator interface {
	IsAuthorized(password string) bool
}

type adminRequest struct {
	Password string `json:"password"`
}

type adminResponse struct {
	Success bool             `json:"success"`
	Status  domain.BotStatus `json:"status"`
}

type admin struct {
	store  StatusStore
	auth   Authenticator
	writer response.JSONResponseWriter
	now    func() time.Time
}

func NewAdmin(store StatusStore, auth Authenticator) *admin {
	return &admin{
		store:  store,
		auth:   auth,
		writer: response.JSONResponseWriter{},
		now:    time.Now,
	}
}

// Control applies ?action=enable|disable|restart to the bot status.
func (a *admin) Control(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	// A missing or malformed body is just a wrong password.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req)

	if !a.auth.IsAuthorized(req.Password) {
		slog.WarnContext(r.Context(), "Unauthorized admin request", "remote", r.RemoteAddr)
		a.writer.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status, err := a.store.Read(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reading bot status", logger.Err(err))
		a.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Status unavailable")
		return
	}

	now := a.now().UTC()
	action := r.URL.Query().Get("action")

	switch action {
	case "enable":
		status.Enabled = true
		status.LastUpdate = &now
	case "disable":
		status.Enabled = false
		status.LastUpdate = &now
	case "restart":
		status.LastRestart = now
	default:
		a.writer.WriteErrorResponse(w, http.StatusBadRequest, "Invalid action")
		return
	}

	if err := a.store.Write(r.Context(), status); err != nil {
		slog.ErrorContext(r.Context(), "Writing bot status", "action", action, logger.Err(err))
		a.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Status unavailable")
		return
	}

	slog.InfoContext(r.Context(), "Bot status changed", "action", action, "enabled", status.Enabled)

	a.writer.WriteSuccessResponse(w, adminResponse{Success: true, Status: status})
}
