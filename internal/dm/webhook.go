package dm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"distrust-bot/internal/domain"
)

// WebhookSender implementa Sender haciendo POST al adaptador del chat, que es quien
// abre el DM con el jugador.
type WebhookSender struct {
	endpoint    string
	token       string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// NewWebhookSender construye el sender. baseURL apunta al adaptador; las entregas
// van a {baseURL}/reveals.
func NewWebhookSender(baseURL, token string, timeout time.Duration, maxAttempts int, logger *zap.Logger) (*WebhookSender, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("dm webhook url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid dm webhook url: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookSender{
		endpoint:    baseURL + "/reveals",
		token:       token,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		backoff:     200 * time.Millisecond,
		logger:      logger,
	}, nil
}

func (s *WebhookSender) SendReveal(ctx context.Context, reveal domain.Reveal) error {
	if strings.TrimSpace(reveal.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}

	body, err := json.Marshal(reveal)
	if err != nil {
		return fmt.Errorf("marshal reveal: %w", err)
	}

	var lastErr error
	backoff := s.backoff
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		var perm permanentError
		if errors.As(lastErr, &perm) {
			return lastErr
		}
		s.logger.Warn("dm delivery attempt failed",
			zap.String("session_id", reveal.SessionID),
			zap.String("player_id", reveal.PlayerID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt == s.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("dm delivery failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *WebhookSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return permanentError{fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// El adaptador no puede abrir el DM (por ejemplo, el jugador los tiene desactivados).
		return permanentError{fmt.Errorf("dm rejected: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))}
	default:
		return fmt.Errorf("dm http error: status=%d", resp.StatusCode)
	}
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }
