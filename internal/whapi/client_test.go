package whapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendText(t *testing.T) {
	var gotAuth string
	var gotReq sendTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/messages/text" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	if err := c.SendText(context.Background(), "5511999990000", "olá"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("wrong auth header: %q", gotAuth)
	}
	if gotReq.To != "5511999990000" || gotReq.Body != "olá" {
		t.Fatalf("wrong payload: %+v", gotReq)
	}
}

func TestSendTextErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	if err := c.SendText(context.Background(), "x", "y"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestMessageUserID(t *testing.T) {
	in := Message{Type: TypeText, From: "111", To: "222", FromMe: false}
	if in.UserID() != "111" {
		t.Fatalf("inbound message should attribute to sender, got %q", in.UserID())
	}
	echo := Message{Type: TypeText, From: "111", To: "222", FromMe: true}
	if echo.UserID() != "222" {
		t.Fatalf("outbound echo should attribute to destination, got %q", echo.UserID())
	}
}
