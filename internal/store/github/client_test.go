package github

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"viaqris/internal/domain"
)

// fakeContents emulates the subset of the GitHub contents API the client uses.
type fakeContents struct {
	mu       sync.Mutex
	exists   bool
	content  []byte
	sha      string
	puts     []putRequest
	rawOnly  bool
	failWith int
}

func (f *fakeContents) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.URL.Path != "/repos/autoftbot/viaqris-data/contents/db/data.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got := r.Header.Get("Authorization"); got != "token ghp_test" {
			t.Errorf("authorization header = %q", got)
		}
		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			_, _ = w.Write([]byte(`{"message":"Server Error"}`))
			return
		}
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("ref") != "main" {
				t.Errorf("ref query = %q", r.URL.Query().Get("ref"))
			}
			if !f.exists {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"message":"Not Found"}`))
				return
			}
			if strings.Contains(r.Header.Get("Accept"), "raw") {
				_, _ = w.Write(f.content)
				return
			}
			resp := contentResponse{SHA: f.sha, Encoding: "base64"}
			if f.rawOnly {
				resp.Encoding = "none"
			} else {
				resp.Content = wrap76(base64.StdEncoding.EncodeToString(f.content))
			}
			_ = json.NewEncoder(w).Encode(resp)
		case http.MethodPut:
			var req putRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode put: %v", err)
			}
			f.puts = append(f.puts, req)
			if f.exists && req.SHA == "" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message":"Invalid request.\n\n\"sha\" wasn't supplied."}`))
				return
			}
			if f.exists && req.SHA != f.sha {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"message":"data.json does not match ` + req.SHA + `"}`))
				return
			}
			content, _ := base64.StdEncoding.DecodeString(req.Content)
			sum := sha1.Sum(content)
			f.content = content
			f.sha = hex.EncodeToString(sum[:])
			status := http.StatusOK
			if !f.exists {
				status = http.StatusCreated
			}
			f.exists = true
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"content":{"sha":"` + f.sha + `"},"commit":{"html_url":"https://github.com/autoftbot/viaqris-data/commit/` + f.sha + `"}}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func wrap76(s string) string {
	var b strings.Builder
	for len(s) > 76 {
		b.WriteString(s[:76])
		b.WriteByte('\n')
		s = s[76:]
	}
	b.WriteString(s)
	return b.String()
}

func newTestClient(t *testing.T, fake *fakeContents) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	client, err := NewClient(Options{
		Token:   "ghp_test",
		BaseURL: srv.URL,
		Owner:   "autoftbot",
		Repo:    "viaqris-data",
		Branch:  "main",
		Path:    "/db/data.json",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestReadAllMissingFileIsEmpty(t *testing.T) {
	fake := &fakeContents{}
	client := newTestClient(t, fake)

	snap, err := client.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(snap.Entries) != 0 || snap.Version != "" {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	entries := domain.Entries{"dukungan-1": {PayerName: "Budi", Amount: "10070", Status: domain.StatusUnpaid}}
	res, err := client.Write(context.Background(), entries, snap.Version, "Create data.json: dukungan-1.")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if len(fake.puts) != 1 || fake.puts[0].SHA != "" {
		t.Fatalf("first write must omit sha, got %+v", fake.puts)
	}
	if fake.puts[0].Branch != "main" || fake.puts[0].Message != "Create data.json: dukungan-1." {
		t.Fatalf("unexpected put payload: %+v", fake.puts[0])
	}
	if res.Version == "" || !strings.Contains(res.CommitURL, res.Version) {
		t.Fatalf("unexpected write result: %+v", res)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	fake := &fakeContents{}
	client := newTestClient(t, fake)
	ctx := context.Background()

	if _, err := client.Write(ctx, domain.Entries{"a": {Amount: "5000"}}, "", "init"); err != nil {
		t.Fatalf("initial write: %v", err)
	}
	snap, err := client.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if snap.Version != fake.sha {
		t.Fatalf("version = %q, want %q", snap.Version, fake.sha)
	}
	if snap.Entries["a"].Amount != "5000" {
		t.Fatalf("entries = %+v", snap.Entries)
	}

	next := snap.Entries.Clone()
	next["b"] = domain.Entry{Amount: "7000"}
	if _, err := client.Write(ctx, next, snap.Version, "add b"); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if fake.puts[1].SHA != snap.Version {
		t.Fatalf("second write sha = %q, want %q", fake.puts[1].SHA, snap.Version)
	}
}

func TestWriteStaleVersionConflicts(t *testing.T) {
	fake := &fakeContents{}
	client := newTestClient(t, fake)
	ctx := context.Background()

	if _, err := client.Write(ctx, domain.Entries{"a": {}}, "", "init"); err != nil {
		t.Fatalf("initial write: %v", err)
	}
	stale, _ := client.ReadAll(ctx)
	if _, err := client.Write(ctx, domain.Entries{"a": {}, "b": {}}, stale.Version, "writer one"); err != nil {
		t.Fatalf("writer one: %v", err)
	}
	before := string(fake.content)

	_, err := client.Write(ctx, domain.Entries{"a": {}, "c": {}}, stale.Version, "writer two")
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("stale write error = %v, want ErrVersionConflict", err)
	}
	if string(fake.content) != before {
		t.Fatalf("stale write overwrote the document")
	}

	_, err = client.Write(ctx, domain.Entries{"a": {}}, "", "missing sha")
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("sha-less overwrite error = %v, want ErrVersionConflict", err)
	}
}

func TestReadAllLargeFileUsesRawMedia(t *testing.T) {
	fake := &fakeContents{exists: true, sha: "abc123", rawOnly: true, content: []byte(`{"big":{"harga_transaksi":"9000"}}`)}
	client := newTestClient(t, fake)

	snap, err := client.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if snap.Version != "abc123" || snap.Entries["big"].Amount != "9000" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestRemoteFailureIsUnavailable(t *testing.T) {
	fake := &fakeContents{failWith: http.StatusBadGateway}
	client := newTestClient(t, fake)

	if _, err := client.ReadAll(context.Background()); !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("ReadAll error = %v, want ErrRemoteUnavailable", err)
	}
	if _, err := client.Write(context.Background(), domain.Entries{}, "", "x"); !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("Write error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(Options{Owner: "o", Repo: "r", Path: "p"}); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("NewClient error = %v, want ErrMissingToken", err)
	}
}
