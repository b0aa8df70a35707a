// Package gemini talks to the generateContent endpoint of a multimodal model.
package gemini

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Sender posts a JSON body and returns the raw JSON reply.
type Sender interface {
	Send(ctx context.Context, url string, body any) (json.RawMessage, error)
}

type Client struct {
	endpoint string
	sender   Sender
	logger   *zap.Logger
}

// NewClient binds a sender to the model endpoint, key included.
func NewClient(endpoint string, sender Sender, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		sender:   sender,
		logger:   logger,
	}
}

// GenerateContent sends one request. A reply that arrives but cannot be decoded is
// treated as an empty reply rather than an error.
func (c *Client) GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	raw, err := c.sender.Send(ctx, c.endpoint, req)
	if err != nil {
		return nil, err
	}

	var resp GenerateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn("Model reply is not valid JSON, treating as empty",
			zap.Error(err),
			zap.Int("bytes", len(raw)))
		return &GenerateResponse{}, nil
	}

	return &resp, nil
}
