package docs

import (
	"context"
	"fmt"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/teemow/handoff/internal/google"
	"github.com/teemow/handoff/internal/instrumentation"
)

// Replacement replaces every occurrence of Find with Replace.
type Replacement struct {
	Find    string
	Replace string
}

// Client wraps the Google Docs API service
type Client struct {
	service *docs.Service
	account string
	metrics *instrumentation.Metrics
}

// NewClient creates a Docs client authorized by provider.
func NewClient(ctx context.Context, provider google.TokenProvider, metrics *instrumentation.Metrics) (*Client, error) {
	httpClient, err := google.NewHTTPClient(ctx, provider)
	if err != nil {
		return nil, err
	}
	return NewClientWithOptions(ctx, provider.Account(), metrics, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a Docs client from raw client options.
func NewClientWithOptions(ctx context.Context, account string, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return &Client{service: docsService, account: account, metrics: metrics}, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// GetDocument retrieves a document including the content of all its tabs.
func (c *Client) GetDocument(ctx context.Context, documentID string) (doc *docs.Document, err error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDocs, instrumentation.OperationGet)
	defer func() { done(err) }()

	doc, err = c.service.Documents.Get(documentID).IncludeTabsContent(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}
	return doc, nil
}

// ReplaceAllText applies all replacements in one batch update and returns
// the total number of occurrences changed. Matching is case sensitive.
func (c *Client) ReplaceAllText(ctx context.Context, documentID string, replacements []Replacement) (changed int64, err error) {
	if documentID == "" {
		return 0, fmt.Errorf("documentID is required")
	}
	if len(replacements) == 0 {
		return 0, nil
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDocs, instrumentation.OperationUpdate)
	defer func() { done(err) }()

	requests := make([]*docs.Request, 0, len(replacements))
	for _, r := range replacements {
		requests = append(requests, &docs.Request{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{Text: r.Find, MatchCase: true},
				ReplaceText:  r.Replace,
				// Empty replacements must still be sent.
				ForceSendFields: []string{"ReplaceText"},
			},
		})
	}

	resp, err := c.service.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to update document %s: %w", documentID, err)
	}

	for _, reply := range resp.Replies {
		if reply != nil && reply.ReplaceAllText != nil {
			changed += reply.ReplaceAllText.OccurrencesChanged
		}
	}
	return changed, nil
}
