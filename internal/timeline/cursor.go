package timeline

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

// Position marks the boundary of the last fetched page in (created, id)
// keyset order.
type Position struct {
	CreatedAt time.Time
	Id        domain.MsgId
}

type cursorPayload struct {
	Scope     string `json:"s"`
	CreatedAt int64  `json:"t"` // epoch micros, matches storage rounding
	Id        int64  `json:"i"`
}

// EncodeCursor mints an opaque continuation token bound to the scope that
// produced it.
func EncodeCursor(scope Scope, pos Position) string {
	raw, _ := json.Marshal(cursorPayload{
		Scope:     scope.Fingerprint(),
		CreatedAt: pos.CreatedAt.UnixMicro(),
		Id:        pos.Id,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor rejects tokens that are undecodable or were minted for a
// different scope's fetch stream.
func DecodeCursor(scope Scope, token string) (Position, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Position{}, internal_errors.InvalidCursor
	}
	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Position{}, internal_errors.InvalidCursor
	}
	if payload.Scope != scope.Fingerprint() {
		return Position{}, internal_errors.InvalidCursor
	}
	return Position{
		CreatedAt: time.UnixMicro(payload.CreatedAt).UTC(),
		Id:        payload.Id,
	}, nil
}
