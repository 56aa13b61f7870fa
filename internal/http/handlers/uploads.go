package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
)

var dataURLPattern = regexp.MustCompile(`^data:(image/(?:png|jpeg|webp));base64,(.*)$`)

var uploadExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type uploadRequest struct {
	DataURL string `json:"dataUrl"`
	Kind    string `json:"kind"`
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Upload stores an avatar or cover image sent as a base64 data URL and
// returns its public path under /uploads.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := a.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultUploadMax
	}
	var req uploadRequest
	// base64 inflates by 4/3; leave room for the JSON envelope.
	if !a.decode(w, r, maxBytes/3*4+4096, &req) {
		return
	}
	if req.Kind != "avatar" && req.Kind != "cover" {
		a.error(w, r, http.StatusBadRequest, msgUploadKind, "")
		return
	}
	m := dataURLPattern.FindStringSubmatch(req.DataURL)
	if m == nil {
		a.error(w, r, http.StatusBadRequest, msgUploadFormat, "")
		return
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil || len(data) == 0 {
		a.error(w, r, http.StatusBadRequest, msgUploadFormat, "invalid base64 payload")
		return
	}
	if int64(len(data)) > maxBytes {
		a.error(w, r, http.StatusRequestEntityTooLarge, msgTooLarge, "")
		return
	}

	name := fmt.Sprintf("%s-%d.%s", req.Kind, a.now().UnixMilli(), uploadExt[m[1]])
	key, err := a.Files.Write(r.Context(), "uploads/"+req.Kind+"/"+name, data)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger().Info().Str("key", key).Int("bytes", len(data)).Msg("image uploaded")
	a.json(w, http.StatusOK, uploadResponse{
		Success: true,
		Message: a.printer(r).Sprintf(msgUploaded),
		URL:     "/" + key,
	})
}
