package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestUpload(t *testing.T) {
	app := newTestApp(t, &stubDonations{})
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

	rr := httptest.NewRecorder()
	app.Upload(rr, jsonRequest(t, http.MethodPost, "/api/upload", map[string]string{"dataUrl": dataURL, "kind": "avatar"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	body := decodeBody[uploadResponse](t, rr)
	want := "/uploads/avatar/avatar-1700000000123.png"
	if !body.Success || body.URL != want {
		t.Fatalf("body = %+v, want url %q", body, want)
	}
	stored, err := app.Files.Read(context.Background(), body.URL)
	if err != nil {
		t.Fatalf("read stored upload: %v", err)
	}
	if string(stored) != string(pngHeader) {
		t.Fatal("stored bytes differ from upload")
	}
}

func TestUploadRejects(t *testing.T) {
	small := base64.StdEncoding.EncodeToString(pngHeader)
	tests := []struct {
		name     string
		body     map[string]string
		maxBytes int64
		want     int
	}{
		{"unknown kind", map[string]string{"dataUrl": "data:image/png;base64," + small, "kind": "banner"}, 0, http.StatusBadRequest},
		{"unsupported mime", map[string]string{"dataUrl": "data:image/gif;base64," + small, "kind": "cover"}, 0, http.StatusBadRequest},
		{"not a data url", map[string]string{"dataUrl": "https://example.com/a.png", "kind": "cover"}, 0, http.StatusBadRequest},
		{"bad base64", map[string]string{"dataUrl": "data:image/jpeg;base64,@@@", "kind": "cover"}, 0, http.StatusBadRequest},
		{"too large", map[string]string{"dataUrl": "data:image/webp;base64," + small, "kind": "cover"}, 8, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &stubDonations{})
			app.UploadMaxBytes = tc.maxBytes
			rr := httptest.NewRecorder()
			app.Upload(rr, jsonRequest(t, http.MethodPost, "/api/upload", tc.body))
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d body = %s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}
