package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/chatter-dev/chatter/internal/config"
	"github.com/chatter-dev/chatter/internal/logger"
	"github.com/chatter-dev/chatter/internal/service"
)

type Handler struct {
	auth         *service.Auth
	workspace    *service.Workspace
	channel      *service.Channel
	conversation *service.Conversation
	message      *service.Message
	reaction     *service.Reaction
	upload       *service.Upload
	health       Pinger
	cfg          *config.Config
}

// Pinger is the readiness probe dependency, satisfied by the pg storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

func New(
	auth *service.Auth,
	workspace *service.Workspace,
	channel *service.Channel,
	conversation *service.Conversation,
	message *service.Message,
	reaction *service.Reaction,
	upload *service.Upload,
	health Pinger,
	cfg *config.Config,
) *Handler {
	return &Handler{auth, workspace, channel, conversation, message, reaction, upload, health, cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("can't encode response", "error", err)
	}
}
