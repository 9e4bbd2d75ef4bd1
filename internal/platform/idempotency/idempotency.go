package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrConflict   = errors.New("idempotency key reused with a different request")
	ErrInProgress = errors.New("request with this idempotency key is still in progress")
)

// Response is the stored outcome replayed for a repeated key.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type record struct {
	Hash     string    `json:"hash"`
	Done     bool      `json:"done"`
	Response *Response `json:"response,omitempty"`
}

// Store reserves keys, remembers completed responses and frees keys whose
// request failed so the client may retry.
type Store interface {
	// Begin reserves key for requestHash. It returns the stored response when
	// the key already completed, ErrInProgress while the first request runs
	// and ErrConflict when the key was used for a different payload.
	Begin(ctx context.Context, key, requestHash string, ttl time.Duration) (*Response, error)
	Complete(ctx context.Context, key, requestHash string, resp Response, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func resolve(existing record, requestHash string) (*Response, error) {
	if existing.Hash != requestHash {
		return nil, ErrConflict
	}
	if !existing.Done || existing.Response == nil {
		return nil, ErrInProgress
	}
	resp := *existing.Response
	return &resp, nil
}
