package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/baseradar/baseradar/internal/config"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		texts []string
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		mu.Lock()
		texts = append(texts, r.PostForm.Get("text"))
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.PostForm.Get("chat_id") != "42" || r.PostForm.Get("parse_mode") != "Markdown" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "token", ChatID: "42", BaseURL: srv.URL + "/"}, srv.Client())
	long := strings.Repeat("headline line\n", 400)
	if err := n.PublishDigest(context.Background(), long); err != nil {
		t.Fatalf("publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(texts) != 2 {
		t.Fatalf("expected message split into 2 parts, got %d", len(texts))
	}
	if strings.Join(texts, "") != long {
		t.Fatalf("parts do not reassemble the digest")
	}
	if paths[0] != "/bottoken/sendMessage" {
		t.Fatalf("unexpected path %s", paths[0])
	}
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "bad", ChatID: "1", BaseURL: srv.URL}, srv.Client())
	if err := n.PublishDigest(context.Background(), "hi"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}

	if err := NewNotifier(config.TelegramConfig{}, nil).PublishDigest(context.Background(), "hi"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	parts := splitMessage("aaaa\nbbbb\ncccccccccc", 6)
	want := []string{"aaaa\n", "bbbb\n", "cccccc", "cccc"}
	if len(parts) != len(want) {
		t.Fatalf("expected %q, got %q", want, parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("expected %q, got %q", want, parts)
		}
	}
}

func TestSplitMessageKeepsRunes(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("比特币", 4)
	parts := splitMessage(text, 10)
	if strings.Join(parts, "") != text {
		t.Fatalf("parts do not rebuild the text: %q", parts)
	}
	for _, p := range parts {
		if !utf8.ValidString(p) || len(p) > 10 {
			t.Fatalf("invalid part %q", p)
		}
	}
	if len(parts) != 4 || parts[0] != "比特币" {
		t.Fatalf("expected 9-byte parts, got %q", parts)
	}
}
