package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teemow/handoff/internal/handoff"
	"github.com/teemow/handoff/internal/logging"
)

// maxRequestBody limits webhook request bodies.
const maxRequestBody = 1 << 20

// webhookResponse is the JSON body of every webhook response.
type webhookResponse struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ScanRequest is the optional body of POST /scans. Missing fields use the
// configured calendar and the default window starting now.
type ScanRequest struct {
	CalendarID string    `json:"calendarId,omitempty"`
	From       time.Time `json:"from,omitempty"`
	To         time.Time `json:"to,omitempty"`
}

// statusForError maps workflow errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, handoff.ErrMissingIdentity):
		return http.StatusBadRequest
	case errors.Is(err, handoff.ErrUnknownParticipant):
		return http.StatusNotFound
	case errors.Is(err, handoff.ErrStaleReference):
		return http.StatusConflict
	case errors.Is(err, handoff.ErrSubmissionsDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, handoff.ErrExternalCall):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(w http.ResponseWriter, status int, resp webhookResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// SubmissionHandler handles POST /submissions.
func SubmissionHandler(sc *ServerContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeResponse(w, http.StatusMethodNotAllowed, webhookResponse{Error: "method not allowed"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		var sub handoff.Submission
		if err := decodeBody(r, &sub, false); err != nil {
			writeResponse(w, http.StatusBadRequest, webhookResponse{Error: err.Error()})
			return
		}

		logger := logging.WithOperation(sc.Logger(), "webhook_submission").
			With(logging.Participant(sub.RespondentEmail))

		// A client that hangs up does not abort a half-filed submission.
		result, err := sc.Workflow().ProcessSubmission(context.WithoutCancel(r.Context()), sub)
		if err != nil {
			logger.Error("Submission failed", logging.Err(err))
			resp := webhookResponse{Error: err.Error()}
			if result != nil {
				resp.Result = result
			}
			writeResponse(w, statusForError(err), resp)
			return
		}

		logger.Info("Submission processed", logging.Folder(result.FolderID))
		writeResponse(w, http.StatusOK, webhookResponse{Result: result})
	})
}

// ScanHandler handles POST /scans.
func ScanHandler(sc *ServerContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeResponse(w, http.StatusMethodNotAllowed, webhookResponse{Error: "method not allowed"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		var req ScanRequest
		if err := decodeBody(r, &req, true); err != nil {
			writeResponse(w, http.StatusBadRequest, webhookResponse{Error: err.Error()})
			return
		}

		window := sc.DefaultWindow()
		if !req.From.IsZero() {
			window.Start = req.From
		}
		if !req.To.IsZero() {
			window.End = req.To
		}
		if err := window.Validate(); err != nil {
			writeResponse(w, http.StatusBadRequest, webhookResponse{Error: err.Error()})
			return
		}

		report, err := sc.RunScan(r.Context(), req.CalendarID, window)
		if err != nil {
			sc.Logger().Error("Calendar scan failed", logging.Operation("webhook_scan"), logging.Err(err))
			resp := webhookResponse{Error: err.Error()}
			if report != nil {
				resp.Result = report
			}
			writeResponse(w, statusForError(err), resp)
			return
		}

		writeResponse(w, http.StatusOK, webhookResponse{Result: report})
	})
}
