// Package likes talks to the remote send-likes endpoint and classifies its
// answers.
package likes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"likesbot/pkg/logx"
)

// Synthesized error codes for failures that never reached the remote
// application layer. The remote's own codes (e.g. ErrInsufficientLikes) come
// back verbatim in RawResponse.Error.
const (
	ErrCodeTimeout         = "timeout"
	ErrCodeConnectionError = "connection_error"
	ErrCodeUnknownError    = "unknown_error"

	ErrInsufficientLikes = "INSUFFICIENT_LIKES"
)

// RawResponse is the remote payload, parsed verbatim. Transport failures are
// folded into the same shape with a synthesized Error code and
// UsageCounted=false, so callers always classify one uniform value.
type RawResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
	LikesAdded   int    `json:"likesAdded,omitempty"`
	Player       string `json:"player,omitempty"`
	UID          string `json:"uid,omitempty"`
	Region       string `json:"region,omitempty"`
	Level        int    `json:"level,omitempty"`
	EXP          int64  `json:"exp,omitempty"`
	Status       int    `json:"status,omitempty"`
	InitialLikes int64  `json:"initialLikes,omitempty"`
	FinalLikes   int64  `json:"finalLikes,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
	MinRequired  int    `json:"minLikesRequired,omitempty"`
	UsageCounted bool   `json:"usageCounted"`
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration // per-call; defaults to 60s
}

// Client issues one GET per identifier. No retries: retry policy, if any,
// belongs to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	log     logx.Logger
}

func NewClient(cfg ClientConfig, log logx.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Send calls the remote endpoint for one player ID. It never returns an
// error: network and decode failures are reported through the RawResponse
// error codes so a cycle can treat every attempt uniformly.
func (c *Client) Send(ctx context.Context, playerID, key string) RawResponse {
	q := url.Values{}
	q.Set("id", playerID)
	q.Set("key", key)
	u := c.baseURL + "/api/sendlikes?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return unknownError(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Warn("likes api timeout", logx.String("player_id", playerID))
			return RawResponse{
				Error:   ErrCodeTimeout,
				Message: "Tempo de resposta esgotado. Tente novamente.",
			}
		}
		c.log.Warn("likes api unreachable", logx.String("player_id", playerID), logx.Err(err))
		return RawResponse{
			Error:   ErrCodeConnectionError,
			Message: fmt.Sprintf("Erro de conexão: %v", err),
		}
	}
	defer resp.Body.Close()

	var raw RawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return unknownError(err)
	}
	return raw
}

func unknownError(err error) RawResponse {
	return RawResponse{
		Error:   ErrCodeUnknownError,
		Message: fmt.Sprintf("Erro desconhecido: %v", err),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
