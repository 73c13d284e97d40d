package utils

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/logger"
)

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var withStatus *errors.ErrorWithStatusCode
	if stderrors.As(err, &withStatus) {
		http.Error(w, withStatus.Message, withStatus.StatusCode)
		return
	}
	switch {
	case stderrors.Is(err, errors.NotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case stderrors.Is(err, errors.NotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case stderrors.Is(err, errors.InvalidCursor):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case stderrors.Is(err, errors.UpstreamUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		// default error is 500
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid request body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request body validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}
