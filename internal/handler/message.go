package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/logger"
	"github.com/chatter-dev/chatter/internal/richtext"
	"github.com/chatter-dev/chatter/internal/timeline"
	"github.com/chatter-dev/chatter/internal/utils"
)

type createMessageRequest struct {
	ChannelId       *int64 `json:"channelId"`
	ConversationId  *int64 `json:"conversationId"`
	ParentMessageId *int64 `json:"parentMessageId"`
	Body            string `json:"body"`
	Image           string `json:"image"`
}

type updateMessageRequest struct {
	Body string `validate:"required" json:"body"`
}

// groupedMessage pairs a message with its render hint: compact messages
// suppress the author header.
type groupedMessage struct {
	domain.Message
	Compact bool
}

type groupedDay struct {
	Date     string
	Messages []groupedMessage
}

type pageResponse struct {
	Messages []domain.Message `json:",omitempty"`
	Days     []groupedDay     `json:",omitempty"`
	Cursor   string
	Status   domain.PageStatus
}

func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body createMessageRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.message.Create(r.Context(), user.Id, domain.MessageCreationData{
		WorkspaceId:     workspaceId,
		ChannelId:       body.ChannelId,
		ConversationId:  body.ConversationId,
		ParentMessageId: body.ParentMessageId,
		Body:            body.Body,
		Image:           body.Image,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, msg)
}

// GetMessages serves one cursor-bounded page of a scope's stream, newest
// first. Non-members get an empty exhausted page, not an error. With
// ?grouped=true the page is returned as calendar days with compact flags.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scope, err := scopeFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = parseIntParam(raw, "limit"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	page, err := h.message.Page(r.Context(), user.Id, workspaceId, scope, r.URL.Query().Get("cursor"), int(limit))
	if err != nil {
		if stderrors.Is(err, internal_errors.NotAuthorized) {
			writeJSON(w, pageResponse{Messages: []domain.Message{}, Status: domain.Exhausted})
			return
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := pageResponse{Cursor: page.Cursor, Status: page.Status}
	if r.URL.Query().Get("grouped") == "true" {
		response.Days = h.groupPage(page.Messages)
	} else {
		response.Messages = page.Messages
		if response.Messages == nil {
			response.Messages = []domain.Message{}
		}
	}
	writeJSON(w, response)
}

// groupPage buckets a page into calendar days, oldest day first, each day
// oldest-first with compact continuation flags.
func (h *Handler) groupPage(msgs []domain.Message) []groupedDay {
	loc := h.cfg.Public.GroupingLocation()
	groups, err := timeline.GroupByDay(msgs, loc)
	if err != nil {
		// Malformed messages are dropped from the view, not fatal
		logger.Log.Warn("some messages could not be grouped", "error", err)
	}

	classifier := timeline.NewClassifier(h.cfg.Public.CompactThreshold(), loc)
	keys := timeline.DayKeys(groups)

	days := make([]groupedDay, 0, len(keys))
	// DayKeys is newest-first; render order is oldest day first
	for i := len(keys) - 1; i >= 0; i-- {
		day := groups[keys[i]]
		compact := classifier.Classify(day)
		grouped := make([]groupedMessage, len(day))
		for j, msg := range day {
			grouped[j] = groupedMessage{Message: msg, Compact: compact[j]}
		}
		days = append(days, groupedDay{Date: keys[i], Messages: grouped})
	}
	return days
}

func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	messageId, err := pathId(r, "message")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := h.message.Get(r.Context(), user.Id, messageId)
	if err != nil {
		if stderrors.Is(err, internal_errors.NotAuthorized) {
			err = internal_errors.NotFound
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	// ?format=html swaps the raw body for a sanitized rendering
	if r.URL.Query().Get("format") == "html" {
		msg.Body = richtext.PreviewHTML(msg.Body)
	}
	writeJSON(w, msg)
}

func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	messageId, err := pathId(r, "message")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body updateMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.message.Update(r.Context(), user.Id, messageId, body.Body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, msg)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	messageId, err := pathId(r, "message")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.message.Remove(r.Context(), user.Id, messageId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
