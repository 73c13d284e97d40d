package handler

import (
	"net/http"

	"github.com/chatter-dev/chatter/internal/utils"
)

type reactionRequest struct {
	Value string `validate:"required" json:"value"`
}

// ToggleReaction flips the caller's reaction on a message and reports
// whether it is active afterwards.
func (h *Handler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	messageId, err := pathId(r, "message")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body reactionRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	active, err := h.reaction.Toggle(r.Context(), user.Id, messageId, body.Value)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, map[string]bool{"active": active})
}
