package instrumentation

import (
	"context"
	"time"
)

// Google services observed by ObserveGoogleAPI.
const (
	ServiceGmail    = "gmail"
	ServiceCalendar = "calendar"
	ServiceDrive    = "drive"
	ServiceDocs     = "docs"
)

// Google API operation types.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationSend   = "send"
	OperationCopy   = "copy"
	OperationExport = "export"
	OperationShare  = "share"
)

// ObserveGoogleAPI starts a span for one Google API call. The returned
// function ends the span and records the operation metric; call it with the
// call's error.
func ObserveGoogleAPI(ctx context.Context, m *Metrics, service, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := StartGoogleAPISpan(ctx, service, operation)

	return ctx, func(err error) {
		status := StatusSuccess
		if err != nil {
			status = StatusError
			SetSpanError(span, err)
		} else {
			SetSpanSuccess(span)
		}
		span.End()
		m.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))
	}
}
