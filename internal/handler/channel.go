package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/utils"
)

type channelRequest struct {
	Name string `validate:"required" json:"name"`
}

func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body channelRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	channel, err := h.channel.Create(r.Context(), workspaceId, user.Id, body.Name)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, channel)
}

// GetChannels degrades to an empty list for non-members.
func (h *Handler) GetChannels(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	channels, err := h.channel.List(r.Context(), workspaceId, user.Id)
	if err != nil && !stderrors.Is(err, internal_errors.NotAuthorized) {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if channels == nil {
		channels = []domain.Channel{}
	}
	writeJSON(w, channels)
}

func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	channelId, err := pathId(r, "channel")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	channel, err := h.channel.Get(r.Context(), user.Id, channelId)
	if err != nil {
		if stderrors.Is(err, internal_errors.NotAuthorized) {
			err = internal_errors.NotFound
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, channel)
}

func (h *Handler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	channelId, err := pathId(r, "channel")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body channelRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.channel.Update(r.Context(), user.Id, channelId, body.Name); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	channelId, err := pathId(r, "channel")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.channel.Remove(r.Context(), user.Id, channelId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
