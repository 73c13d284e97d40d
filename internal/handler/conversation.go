package handler

import (
	stderrors "errors"
	"net/http"

	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/utils"
)

type conversationRequest struct {
	MemberId int64 `validate:"required" json:"memberId"`
}

// CreateOrGetConversation returns the direct stream with another member,
// creating it on first use.
func (h *Handler) CreateOrGetConversation(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body conversationRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	conversation, err := h.conversation.CreateOrGet(r.Context(), workspaceId, user.Id, body.MemberId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, conversation)
}

// GetConversation hides streams the caller is not party to behind a 404.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	conversationId, err := pathId(r, "conversation")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conversation, err := h.conversation.Get(r.Context(), user.Id, conversationId)
	if err != nil {
		if stderrors.Is(err, internal_errors.NotAuthorized) {
			err = internal_errors.NotFound
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, conversation)
}
