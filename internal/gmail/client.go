package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/handoff/internal/google"
	"github.com/teemow/handoff/internal/instrumentation"
)

// Client wraps the Gmail API service
type Client struct {
	svc     *gmail.Service
	account string
	metrics *instrumentation.Metrics
}

// NewClient creates a Gmail client authorized by provider.
func NewClient(ctx context.Context, provider google.TokenProvider, metrics *instrumentation.Metrics) (*Client, error) {
	httpClient, err := google.NewHTTPClient(ctx, provider)
	if err != nil {
		return nil, err
	}
	return NewClientWithOptions(ctx, provider.Account(), metrics, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a Gmail client from raw client options.
func NewClientWithOptions(ctx context.Context, account string, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc, account: account, metrics: metrics}, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// SendEmail sends msg from the authorized mailbox and returns the message ID.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (id string, err error) {
	if msg == nil || len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	raw, err := buildMessage(msg)
	if err != nil {
		return "", fmt.Errorf("failed to build message: %w", err)
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceGmail, instrumentation.OperationSend)
	defer func() { done(err) }()

	sent, err := c.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return sent.Id, nil
}
