package setup

import (
	"github.com/chatter-dev/chatter/internal/config"
	"github.com/chatter-dev/chatter/internal/handler"
	"github.com/chatter-dev/chatter/internal/jwt"
	"github.com/chatter-dev/chatter/internal/middleware"
	"github.com/chatter-dev/chatter/internal/service"
	"github.com/chatter-dev/chatter/internal/storage/fs"
	"github.com/chatter-dev/chatter/internal/storage/pg"
	"github.com/chatter-dev/chatter/internal/timeline"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Storage        *pg.Storage
	Blobs          *fs.Storage
	Hub            *timeline.Hub
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Config         *config.Config
}

// SetupDependencies wires storage, services, the event hub and handlers.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}
	blobs, err := fs.New(cfg.Public.MediaRoot)
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	hub := timeline.NewHub()

	auth := service.NewAuth(storage, jwtService)
	workspace := service.NewWorkspace(storage)
	channel := service.NewChannel(storage)
	conversation := service.NewConversation(storage)
	message := service.NewMessage(storage, hub, cfg.Public.MessagesPerPage())
	reaction := service.NewReaction(storage, hub)
	upload := service.NewUpload(blobs, cfg.Public.MaxUploadBytes, cfg.Public.AllowedImageMimes)

	h := handler.New(auth, workspace, channel, conversation, message, reaction, upload, storage, cfg)

	return &Dependencies{
		Storage:        storage,
		Blobs:          blobs,
		Hub:            hub,
		Handler:        h,
		AuthMiddleware: middleware.NewAuth(jwtService),
		Config:         cfg,
	}, nil
}

// Cleanup releases everything SetupDependencies acquired.
func (d *Dependencies) Cleanup() {
	d.Hub.Close()
	d.Storage.Cleanup()
}
