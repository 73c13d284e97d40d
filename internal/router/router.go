package router

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/chatter-dev/chatter/internal/middleware"
	"github.com/chatter-dev/chatter/internal/middleware/metrics"
	rl "github.com/chatter-dev/chatter/internal/middleware/ratelimiter"
	"github.com/chatter-dev/chatter/internal/setup"
)

// New configures the mux router with all routes.
// Ratelimiters set with .Use limit requests for all endpoints combined in
// that subrouter.
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(handlers.CompressHandler)
	r.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{deps.Config.Public.CorsOrigin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	))
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureCookies))
	r.Use(metrics.Middleware)

	// Wildcard OPTIONS handler so preflight requests never 404
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/ready", h.Ready).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// Credential endpoints get strict per-IP limits
	authRoutes := v1.PathPrefix("/auth").Subrouter()
	credential := authRoutes.NewRoute().Subrouter()
	credential.Use(mw.RateLimit(rl.NewUserRateLimiter(1, 5, 1*time.Hour), mw.GetIP))
	credential.HandleFunc("/register", h.Register).Methods("POST")
	credential.HandleFunc("/login", h.Login).Methods("POST")

	authRoutes.HandleFunc("/logout", h.Logout).Methods("POST")
	authRoutes.Handle("/me", authMw.NeedAuth()(http.HandlerFunc(h.Me))).Methods("GET")

	// Everything below requires a valid token
	loggedIn := v1.NewRoute().Subrouter()
	loggedIn.Use(authMw.NeedAuth())
	loggedIn.Use(mw.RateLimit(rl.NewUserRateLimiter(100, 200, 1*time.Hour), mw.GetUserIdentity))

	loggedIn.HandleFunc("/workspaces", h.CreateWorkspace).Methods("POST")
	loggedIn.HandleFunc("/workspaces", h.GetWorkspaces).Methods("GET")
	loggedIn.HandleFunc("/workspaces/{workspace}", h.GetWorkspace).Methods("GET")
	loggedIn.HandleFunc("/workspaces/{workspace}", h.UpdateWorkspace).Methods("PATCH")
	loggedIn.HandleFunc("/workspaces/{workspace}", h.DeleteWorkspace).Methods("DELETE")
	loggedIn.HandleFunc("/workspaces/{workspace}/info", h.GetWorkspaceInfo).Methods("GET")
	loggedIn.HandleFunc("/workspaces/{workspace}/join", h.JoinWorkspace).Methods("POST")
	loggedIn.HandleFunc("/workspaces/{workspace}/join-code", h.NewJoinCode).Methods("POST")

	loggedIn.HandleFunc("/workspaces/{workspace}/members", h.GetMembers).Methods("GET")
	loggedIn.HandleFunc("/workspaces/{workspace}/members/me", h.GetCurrentMember).Methods("GET")
	loggedIn.HandleFunc("/workspaces/{workspace}/members/{member}", h.GetMember).Methods("GET")

	loggedIn.HandleFunc("/workspaces/{workspace}/channels", h.CreateChannel).Methods("POST")
	loggedIn.HandleFunc("/workspaces/{workspace}/channels", h.GetChannels).Methods("GET")
	loggedIn.HandleFunc("/channels/{channel}", h.GetChannel).Methods("GET")
	loggedIn.HandleFunc("/channels/{channel}", h.UpdateChannel).Methods("PATCH")
	loggedIn.HandleFunc("/channels/{channel}", h.DeleteChannel).Methods("DELETE")

	loggedIn.HandleFunc("/workspaces/{workspace}/conversations", h.CreateOrGetConversation).Methods("POST")
	loggedIn.HandleFunc("/conversations/{conversation}", h.GetConversation).Methods("GET")

	// Posting is limited tighter than reading
	loggedIn.Handle("/workspaces/{workspace}/messages",
		mw.RateLimit(rl.NewUserRateLimiter(1, 5, 1*time.Hour), mw.GetUserIdentity)(http.HandlerFunc(h.CreateMessage))).Methods("POST")
	loggedIn.HandleFunc("/workspaces/{workspace}/messages", h.GetMessages).Methods("GET")
	loggedIn.HandleFunc("/workspaces/{workspace}/stream", h.StreamMessages).Methods("GET")
	loggedIn.HandleFunc("/messages/{message}", h.GetMessage).Methods("GET")
	loggedIn.HandleFunc("/messages/{message}", h.UpdateMessage).Methods("PATCH")
	loggedIn.HandleFunc("/messages/{message}", h.DeleteMessage).Methods("DELETE")
	loggedIn.HandleFunc("/messages/{message}/reactions", h.ToggleReaction).Methods("POST")

	loggedIn.HandleFunc("/uploads", h.CreateUploadURL).Methods("POST")
	loggedIn.HandleFunc("/uploads/{token}", h.UploadImage).Methods("PUT")
	loggedIn.HandleFunc("/uploads/{handle}", h.GetImage).Methods("GET")

	return r
}
