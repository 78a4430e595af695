package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/handoff/internal/google"
	"github.com/teemow/handoff/internal/instrumentation"
)

// pageSize is the number of events requested per page.
const pageSize = 250

// Client wraps the Google Calendar API service
type Client struct {
	svc     *calendar.Service
	account string
	metrics *instrumentation.Metrics
}

// NewClient creates a Calendar client authorized by provider.
func NewClient(ctx context.Context, provider google.TokenProvider, metrics *instrumentation.Metrics) (*Client, error) {
	httpClient, err := google.NewHTTPClient(ctx, provider)
	if err != nil {
		return nil, err
	}
	return NewClientWithOptions(ctx, provider.Account(), metrics, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a Calendar client from raw client options.
func NewClientWithOptions(ctx context.Context, account string, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, account: account, metrics: metrics}, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// ListEvents lists the events of a calendar that overlap [timeMin, timeMax),
// with recurring events expanded, ordered by start time.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) (events []EventSummary, err error) {
	if calendarID == "" {
		return nil, fmt.Errorf("calendarID is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceCalendar, instrumentation.OperationList)
	defer func() { done(err) }()

	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(pageSize)

	err = call.Pages(ctx, func(page *calendar.Events) error {
		for _, event := range page.Items {
			events = append(events, toEventSummary(event))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}
