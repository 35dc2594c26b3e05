package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/washlane/booking-assistant/pkg/logger"
	"github.com/washlane/booking-assistant/pkg/metrics"
)

// Gateway sends messages through the messaging gateway's REST API. The
// per-chat endpoint is the primary path; when it fails, delivery is retried
// once through the generic messages endpoint before giving up.
type Gateway struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logger.Logger
}

// NewGateway creates a gateway client.
func NewGateway(baseURL, token string, log *logger.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  log,
	}
}

type sendRequest struct {
	To   string `json:"to,omitempty"`
	Text string `json:"text"`
}

// Send delivers text to the conversation key, falling back to the secondary
// send path when the primary fails.
func (g *Gateway) Send(ctx context.Context, to, text string) error {
	primary := fmt.Sprintf("%s/chats/%s/messages", g.baseURL, url.PathEscape(to))
	if err := g.post(ctx, primary, sendRequest{Text: text}); err != nil {
		metrics.SendFailures.WithLabelValues("primary").Inc()
		g.logger.Warn("primary send failed, trying fallback",
			zap.String("chat_id", to),
			zap.Error(err),
		)

		fallback := g.baseURL + "/messages"
		if err := g.post(ctx, fallback, sendRequest{To: to, Text: text}); err != nil {
			metrics.SendFailures.WithLabelValues("fallback").Inc()
			return fmt.Errorf("fallback send failed: %w", err)
		}
	}
	return nil
}

func (g *Gateway) post(ctx context.Context, endpoint string, body sendRequest) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
