package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/mvidal/destino/pkg/logger"
)

// maxBodyBytes caps request bodies; preference lists are small.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// RetryAfterSeconds is set on 429 responses only.
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Named("api").Error(context.Background(), "encode response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// decodeJSON reads and decodes a JSON body, rejecting unknown garbage early.
func decodeJSON(r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return WrapKind("api.decodeJSON", ErrBadRequest, err)
	}
	return nil
}
