package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendHTML(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot123:ABC/sendMessage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{BotToken: "123:ABC", ChatID: "-10042", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.SendHTML(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("SendHTML: %v", err)
	}
	if got.ChatID != "-10042" || got.Text != "<b>hi</b>" || got.ParseMode != "HTML" || !got.DisableWebPagePreview {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendHTMLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	client, _ := NewClient(Options{BotToken: "t", ChatID: "c", BaseURL: srv.URL})
	err := client.SendHTML(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("SendHTML error = %v", err)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Options{BotToken: "t"}); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("NewClient error = %v, want ErrMissingToken", err)
	}
}
