package accessclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestDemoModeOnlyChapterOne(t *testing.T) {
	t.Parallel()

	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		_, _ = w.Write([]byte(`{"valid": true}`))
	}))
	defer srv.Close()

	client := New(NewMapStore(map[string]string{"mode": "demo"}), Config{Endpoint: srv.URL})
	ctx := context.Background()

	if !client.VerifyAccess(ctx, 1) {
		t.Fatalf("demo mode should grant chapter 1")
	}
	for _, chapter := range []int{0, 2, 7, -1, 100} {
		if client.VerifyAccess(ctx, chapter) {
			t.Fatalf("demo mode should deny chapter %d", chapter)
		}
	}
	if n := atomic.LoadInt64(&calls); n != 0 {
		t.Fatalf("demo mode must not call the endpoint, saw %d calls", n)
	}
}

func TestDefaultModeIsDemo(t *testing.T) {
	t.Parallel()

	client := New(NewMapStore(nil), Config{})
	if got := client.UserMode(); got != ModeDemo {
		t.Fatalf("expected default mode %q, got %q", ModeDemo, got)
	}
	// Empty stored value falls back to demo as well.
	client = New(NewMapStore(map[string]string{"mode": ""}), Config{})
	if got := client.UserMode(); got != ModeDemo {
		t.Fatalf("expected empty mode to default to %q, got %q", ModeDemo, got)
	}
}

func TestMissingTokenIsNil(t *testing.T) {
	t.Parallel()

	client := New(NewMapStore(nil), Config{})
	if client.UserToken() != nil {
		t.Fatalf("expected nil token when unset")
	}
}

func TestRemoteVerificationRequestAndGrant(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"valid": true, "mode": "full", "username": "aisha"}`))
	}))
	defer srv.Close()

	store := NewMapStore(map[string]string{"mode": "full", "token": "tok-123"})
	client := New(store, Config{Endpoint: srv.URL})

	if !client.VerifyAccess(context.Background(), 4) {
		t.Fatalf("expected access granted when endpoint returns valid: true")
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected application/json content type, got %q", gotContentType)
	}

	var req struct {
		Token   *string `json:"token"`
		Chapter int     `json:"chapter"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body not valid json: %v", err)
	}
	if req.Token == nil || *req.Token != "tok-123" {
		t.Fatalf("expected token tok-123 in request, got %v", req.Token)
	}
	if req.Chapter != 4 {
		t.Fatalf("expected chapter 4 in request, got %d", req.Chapter)
	}
}

func TestRemoteVerificationDenied(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"valid": false, "mode": "invalid"}`))
	}))
	defer srv.Close()

	client := New(NewMapStore(map[string]string{"mode": "full", "token": "expired"}), Config{Endpoint: srv.URL})
	if client.VerifyAccess(context.Background(), 2) {
		t.Fatalf("expected denial when endpoint returns valid: false")
	}
}

func TestMissingValidFieldDenies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"mode": "full"}`))
	}))
	defer srv.Close()

	client := New(NewMapStore(map[string]string{"mode": "full", "token": "tok"}), Config{Endpoint: srv.URL})
	if client.VerifyAccess(context.Background(), 3) {
		t.Fatalf("expected denial when valid field is absent")
	}
}

func TestEndpointFailuresDenyWithoutError(t *testing.T) {
	t.Parallel()

	// Connection refused: the server is closed before use.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := New(NewMapStore(map[string]string{"mode": "full", "token": "tok"}), Config{Endpoint: endpoint})
	if client.VerifyAccess(context.Background(), 2) {
		t.Fatalf("expected denial on connection failure")
	}

	// Malformed JSON body.
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client = New(NewMapStore(map[string]string{"mode": "full", "token": "tok"}), Config{Endpoint: srv.URL})
	if client.VerifyAccess(context.Background(), 2) {
		t.Fatalf("expected denial on malformed response")
	}
}

func TestAbsentTokenForwardedAsNull(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"valid": false, "mode": "demo"}`))
	}))
	defer srv.Close()

	// Mode set to full but no token stored: the null token still travels.
	client := New(NewMapStore(map[string]string{"mode": "full"}), Config{Endpoint: srv.URL})
	_ = client.VerifyAccess(context.Background(), 5)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(gotBody, &raw); err != nil {
		t.Fatalf("request body not valid json: %v", err)
	}
	tokenRaw, ok := raw["token"]
	if !ok {
		t.Fatalf("expected token field in request body")
	}
	if string(tokenRaw) != "null" {
		t.Fatalf("expected token to be null, got %s", tokenRaw)
	}
	if string(raw["chapter"]) != "5" {
		t.Fatalf("expected chapter 5, got %s", raw["chapter"])
	}
}
