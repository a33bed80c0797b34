package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "evalview/internal/platform/net/http"
	metahttp "evalview/internal/services/api/meta/http"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func serve(t *testing.T, d metahttp.Deps) *httptest.Server {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	metahttp.Register(r, d)
	ts := httptest.NewServer(r.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func getData(t *testing.T, ts *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("data %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := serve(t, metahttp.Deps{ServiceName: "evalview-api", StartedAt: time.Now()})

	var h metahttp.HealthResponse
	if status := getData(t, ts, "/health", &h); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !h.OK || h.Service != "evalview-api" {
		t.Fatalf("health = %+v", h)
	}
}

func TestReady_NoChecks(t *testing.T) {
	ts := serve(t, metahttp.Deps{ServiceName: "evalview-api", StartedAt: time.Now()})

	var rr metahttp.ReadyResponse
	if status := getData(t, ts, "/ready", &rr); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if rr.Status != "ok" || len(rr.Checks) != 0 {
		t.Fatalf("ready = %+v", rr)
	}
}

func TestReady_FailingCheck(t *testing.T) {
	ts := serve(t, metahttp.Deps{
		ServiceName: "evalview-api",
		StartedAt:   time.Now(),
		Checks: map[string]metahttp.Pinger{
			"good": fakePinger{},
			"bad":  fakePinger{err: errors.New("down")},
		},
	})

	var rr metahttp.ReadyResponse
	getData(t, ts, "/ready", &rr)
	if rr.Status != "fail" {
		t.Fatalf("overall = %q, want fail", rr.Status)
	}
	if len(rr.Checks) != 2 || rr.Checks[0].Name != "bad" || rr.Checks[0].Status != "fail" {
		t.Fatalf("checks = %+v", rr.Checks)
	}
	if rr.Checks[1].Name != "good" || rr.Checks[1].Status != "ok" {
		t.Fatalf("checks = %+v", rr.Checks)
	}
}

func TestServiceInfo(t *testing.T) {
	started := time.Now().Add(-time.Minute)
	ts := serve(t, metahttp.Deps{ServiceName: "evalview-api", StartedAt: started})

	var s metahttp.ServiceResponse
	getData(t, ts, "/service", &s)
	if s.Name != "evalview-api" || s.Uptime < 59 {
		t.Fatalf("service = %+v", s)
	}
}

func TestVersion(t *testing.T) {
	ts := serve(t, metahttp.Deps{ServiceName: "evalview-api", StartedAt: time.Now()})

	var v struct {
		Service string `json:"service"`
	}
	if status := getData(t, ts, "/version", &v); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if v.Service != "evalview-api" {
		t.Fatalf("version service = %q", v.Service)
	}
}
