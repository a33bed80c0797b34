package httpkit

import (
	"net/http"
	"testing"

	phttp "evalview/internal/platform/net/http"
)

// fakeAuthPort satisfies middleware.AuthPort without hitting real auth
type fakeAuthPort struct{ calls int }

func (f *fakeAuthPort) Authorize(*http.Request) error {
	f.calls++
	return nil
}

func TestProtected_GroupsRoutesUnderAuth(t *testing.T) {
	t.Parallel()

	// Reuse the shared fakeRouter defined in routes_test.go
	root := &fakeRouter{}
	ap := &fakeAuthPort{}

	var h phttp.Handler = nil

	Protected(root, ap, func(gr Router) {
		gr.Post("/invalidate", h)
		gr.Post("/purge", h)
	})

	// auth middleware attached exactly once to the group
	if root.useCalls != 1 || root.lastMWLen != 1 {
		t.Fatalf("expected Use once with 1 middleware, got calls=%d len=%d", root.useCalls, root.lastMWLen)
	}

	want := []struct {
		verb string
		path string
	}{
		{"POST", "/invalidate"},
		{"POST", "/purge"},
	}
	if len(root.verbCalls) != len(want) {
		t.Fatalf("expected %d verb calls, got %d: %#v", len(want), len(root.verbCalls), root.verbCalls)
	}
	for i, w := range want {
		if root.verbCalls[i].verb != w.verb || root.verbCalls[i].path != w.path {
			t.Fatalf("call %d mismatch: want %s %s, got %s %s",
				i, w.verb, w.path, root.verbCalls[i].verb, root.verbCalls[i].path)
		}
	}

	// Ensure auth port isn't invoked during wiring (it runs at request time)
	if ap.calls != 0 {
		t.Fatalf("auth port Authorize should not be called during route wiring, got %d", ap.calls)
	}
}

func TestProtected_NilPortStillGroups(t *testing.T) {
	t.Parallel()

	root := &fakeRouter{}

	Protected(root, nil, func(gr Router) {
		gr.Get("/open", nil)
	})

	// a nil port still wires the middleware; it passes through at request time
	if root.useCalls != 1 {
		t.Fatalf("expected Use once, got %d", root.useCalls)
	}
	if len(root.verbCalls) != 1 || root.verbCalls[0].verb != "GET" || root.verbCalls[0].path != "/open" {
		t.Fatalf("expected GET /open registration, got %+v", root.verbCalls)
	}
}
