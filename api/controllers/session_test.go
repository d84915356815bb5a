package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	checkoutsvc "github.com/aesthetikoase/checkout-backend/internal/checkout"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
)

type stubSessionReader struct {
	origin    string
	sessionID string
	details   *checkoutsvc.SessionDetails
	err       error
}

func (s *stubSessionReader) RetrieveSession(_ context.Context, origin, sessionID string) (*checkoutsvc.SessionDetails, error) {
	s.origin = origin
	s.sessionID = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return s.details, nil
}

func TestSessionDetails(t *testing.T) {
	t.Parallel()

	svc := &stubSessionReader{details: &checkoutsvc.SessionDetails{
		ClientReferenceID: "AO-28082026-0042",
		AmountTotal:       11850,
		Currency:          "chf",
	}}
	handler := SessionDetails(svc, nil)

	rec := postJSON(t, handler, `{"session_id":"cs_test_123"}`, func(r *http.Request) {
		r.Header.Set("Origin", "https://aesthetikoase.webflow.io")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["client_reference_id"] != "AO-28082026-0042" {
		t.Fatalf("unexpected response %v", resp)
	}
	if svc.sessionID != "cs_test_123" || svc.origin != "https://aesthetikoase.webflow.io" {
		t.Fatalf("service got %q from %q", svc.sessionID, svc.origin)
	}
}

func TestSessionDetailsRequiresID(t *testing.T) {
	t.Parallel()

	handler := SessionDetails(&stubSessionReader{}, nil)
	rec := postJSON(t, handler, `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSessionDetailsNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubSessionReader{err: pkgerrors.New(pkgerrors.CodeNotFound, "session not found")}
	handler := SessionDetails(svc, nil)

	rec := postJSON(t, handler, `{"session_id":"cs_missing"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
