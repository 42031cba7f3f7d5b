// Package reader implements the backend Response Reader over HTTP.
package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 10 * 1024 * 1024
	defaultMaxErrorBody = 512
	userAgent           = "99minutos-tracking-viewer/1.0"
)

// Config captures the settings for talking to the tracking backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// MaxBodyBytes caps how much of a success body is read.
	MaxBodyBytes int64
	// MaxErrorBody caps how much of an error body ends up in messages.
	MaxErrorBody int
	// Tokens, when set, signs every request with a bearer token.
	Tokens *TokenSource
}

// HTTPReader performs single GET retrievals and classifies them as Outcomes.
type HTTPReader struct {
	client  *http.Client
	baseURL string
	cfg     Config
	log     zerolog.Logger
}

// New builds an HTTPReader. A nil client gets one with cfg.Timeout applied.
func New(cfg Config, client *http.Client, log zerolog.Logger) *HTTPReader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.MaxErrorBody <= 0 {
		cfg.MaxErrorBody = defaultMaxErrorBody
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPReader{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		log:     log,
	}
}

// Read fetches path once. 404 and 204 map to NotFound, other non-2xx codes and
// network failures to TransportError, and anything that is not decodable JSON
// to SchemaError.
func (r *HTTPReader) Read(ctx context.Context, path string) domain.Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return domain.TransportError("GET %s: new request: %v", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.cfg.Tokens != nil {
		token, err := r.cfg.Tokens.Token()
		if err != nil {
			return domain.TransportError("GET %s: sign token: %v", path, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.TransportError("GET %s: cancelled", path)
		}
		return domain.TransportError("GET %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNoContent:
		return domain.NotFound()
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return domain.TransportError("GET %s: HTTP %d%s", path, resp.StatusCode, r.errorBody(resp.Body))
	}

	ct := resp.Header.Get("Content-Type")
	if !isJSONMediaType(ct) {
		r.log.Debug().Str("path", path).Str("content_type", ct).Msg("unexpected content type")
		return domain.SchemaError("GET %s: unexpected content type %q", path, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxBodyBytes))
	if err != nil {
		return domain.TransportError("GET %s: read body: %v", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return domain.SchemaError("GET %s: malformed JSON: %v", path, err)
	}
	return domain.Success(payload)
}

// errorBody returns ": <body>" truncated to MaxErrorBody, or "" when empty.
func (r *HTTPReader) errorBody(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, int64(r.cfg.MaxErrorBody)+1))
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return ""
	}
	return ": " + truncate(s, r.cfg.MaxErrorBody)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// isJSONMediaType accepts application/json and any +json structured suffix.
func isJSONMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
