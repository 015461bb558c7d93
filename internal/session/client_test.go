package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientVerify_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/auth/v1/user" {
			t.Fatalf("path = %s, want /auth/v1/user", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("authorization = %q, want Bearer tok", got)
		}
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Fatalf("apikey = %q, want anon-key", got)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(userResponse{ID: "u1", Email: "admin@example.com"}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "anon-key")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	admin, err := client.Verify(ctx, "tok")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if admin.ID != "u1" || admin.Email != "admin@example.com" {
		t.Fatalf("unexpected admin: %+v", admin)
	}
}

func TestClientVerify_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.Verify(ctx, "expired")
	if err != ErrInvalidSession {
		t.Fatalf("err = %v, want ErrInvalidSession", err)
	}
}

func TestClientVerify_UnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.Verify(ctx, "tok")
	if err == nil || err == ErrInvalidSession {
		t.Fatalf("err = %v, want unexpected status error", err)
	}
}

func TestClientVerify_EmptyToken(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "")

	if _, err := client.Verify(context.Background(), ""); err != ErrInvalidSession {
		t.Fatalf("err = %v, want ErrInvalidSession", err)
	}
}
