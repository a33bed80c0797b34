package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// exercises captureWriter directly
func TestCaptureWriter_RecordsStatusAndBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rr, status: http.StatusOK}

	cw.WriteHeader(201)
	if cw.status != 201 {
		t.Fatalf("expected status 201 got %d", cw.status)
	}
	if rr.Code != 201 {
		t.Fatalf("expected recorder code 201 got %d", rr.Code)
	}

	if _, err := cw.Write([]byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := cw.Write([]byte("there")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if cw.bytes != 7 {
		t.Fatalf("expected 7 bytes counted got %d", cw.bytes)
	}
}
