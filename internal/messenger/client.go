package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client sends outbound replies through the Graph Send API. Delivery is
// fire-and-forget: callers log failures and never retry.
type Client struct {
	httpClient  *http.Client
	apiBase     string
	accessToken string
	logger      *zap.Logger
}

func NewClient(apiBase, accessToken string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		apiBase:     apiBase,
		accessToken: accessToken,
		logger:      logger,
	}
}

// SendText posts one text message to the recipient.
func (c *Client) SendText(ctx context.Context, recipientID, text string) error {
	payload := sendRequest{
		Recipient:     Participant{ID: recipientID},
		Message:       sendMessage{Text: text},
		MessagingType: "RESPONSE",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s",
		c.apiBase, url.QueryEscape(c.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("send api returned %d: %s", resp.StatusCode, respBody)
	}

	c.logger.Debug("Reply delivered", zap.String("recipient_id", recipientID))
	return nil
}
