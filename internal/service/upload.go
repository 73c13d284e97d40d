package service

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/validation"
)

type BlobStorage interface {
	Save(handle string, r io.Reader) (int64, error)
	Read(handle string) (io.ReadCloser, error)
	Delete(handle string) error
}

const uploadTokenTTL = 15 * time.Minute

type Upload struct {
	blobs        BlobStorage
	maxBytes     int64
	allowedMimes []string

	mu     sync.Mutex
	tokens map[string]time.Time // token -> expiry
	now    func() time.Time
}

func NewUpload(blobs BlobStorage, maxBytes int64, allowedMimes []string) *Upload {
	return &Upload{
		blobs:        blobs,
		maxBytes:     maxBytes,
		allowedMimes: allowedMimes,
		tokens:       make(map[string]time.Time),
		now:          time.Now,
	}
}

// NewToken issues a one-time write token. The caller PUTs the blob to the
// token's URL before it expires.
func (u *Upload) NewToken() string {
	token := uuid.NewString()
	u.mu.Lock()
	defer u.mu.Unlock()
	for t, expiry := range u.tokens {
		if expiry.Before(u.now()) {
			delete(u.tokens, t)
		}
	}
	u.tokens[token] = u.now().Add(uploadTokenTTL)
	return token
}

// Redeem consumes a write token. Unknown, expired and already-used tokens
// all fail the same way.
func (u *Upload) Redeem(token string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	expiry, ok := u.tokens[token]
	delete(u.tokens, token)
	if !ok || expiry.Before(u.now()) {
		return &internal_errors.ErrorWithStatusCode{Message: "Unknown upload token", StatusCode: http.StatusNotFound}
	}
	return nil
}

// Store validates and persists one image blob, returning the opaque handle
// messages reference it by.
func (u *Upload) Store(contentType string, size int64, data io.ReadSeeker) (string, *validation.UploadedImage, error) {
	if size <= 0 {
		return "", nil, &internal_errors.ValidationError{Message: "empty upload"}
	}
	if u.maxBytes > 0 && size > u.maxBytes {
		return "", nil, &internal_errors.ErrorWithStatusCode{Message: "File too large", StatusCode: http.StatusRequestEntityTooLarge}
	}

	img, err := validation.ValidateImage(contentType, size, data, u.allowedMimes)
	if err != nil {
		return "", nil, &internal_errors.ErrorWithStatusCode{Message: err.Error(), StatusCode: http.StatusUnsupportedMediaType}
	}

	handle := uuid.NewString()
	if _, err := u.blobs.Save(handle, data); err != nil {
		return "", nil, err
	}
	return handle, img, nil
}

func (u *Upload) Open(handle string) (io.ReadCloser, error) {
	return u.blobs.Read(handle)
}

func (u *Upload) Remove(handle string) error {
	return u.blobs.Delete(handle)
}
