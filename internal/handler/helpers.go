package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/chatter-dev/chatter/internal/domain"
	"github.com/chatter-dev/chatter/internal/middleware"
	"github.com/chatter-dev/chatter/internal/timeline"
)

func parseIntParam(value, name string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return n, nil
}

// pathId reads a numeric path variable registered on the route.
func pathId(r *http.Request, name string) (int64, error) {
	return parseIntParam(mux.Vars(r)[name], name)
}

func pathString(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// requireUser returns the authenticated user or writes a 401. Routes behind
// NeedAuth always have one; this guards direct handler use in tests.
func requireUser(w http.ResponseWriter, r *http.Request) *domain.User {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
	}
	return user
}

// scopeFromQuery builds the message scope from query parameters: channelId,
// optionally with parentMessageId, or conversationId.
func scopeFromQuery(r *http.Request) (timeline.Scope, error) {
	var scope timeline.Scope
	query := r.URL.Query()

	if raw := query.Get("channelId"); raw != "" {
		id, err := parseIntParam(raw, "channelId")
		if err != nil {
			return timeline.Scope{}, err
		}
		scope.ChannelId = &id
	}
	if raw := query.Get("parentMessageId"); raw != "" {
		id, err := parseIntParam(raw, "parentMessageId")
		if err != nil {
			return timeline.Scope{}, err
		}
		scope.ParentMessageId = &id
	}
	if raw := query.Get("conversationId"); raw != "" {
		id, err := parseIntParam(raw, "conversationId")
		if err != nil {
			return timeline.Scope{}, err
		}
		scope.ConversationId = &id
	}

	return scope, scope.Validate()
}
