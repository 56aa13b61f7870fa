package handlers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys double as the English text.
const (
	msgInvalidRequest   = "Invalid request."
	msgNotFound         = "Transaction not found."
	msgConflict         = "The data changed in the meantime, please try again."
	msgUpstream         = "An upstream service is unavailable."
	msgUnauthorized     = "Authentication required."
	msgMisconfigured    = "Server configuration is incomplete."
	msgInternal         = "Internal server error."
	msgTooLarge         = "Request body too large."
	msgTooMany          = "Too many requests, slow down."
	msgRouteNotFound    = "Route not found."
	msgMethodNotAllowed = "Method %s is not allowed."

	msgCreated        = "Data for '%s' processed successfully!"
	msgStatusUpdated  = "Status for '%s' updated."
	msgPaymentFound   = "Payment detected. Status marked Berhasil."
	msgPaymentMissing = "No incoming payment found yet."
	msgSettingsSaved  = "Settings saved."
	msgUploaded       = "File uploaded."
	msgUploadKind     = "kind must be avatar or cover."
	msgUploadFormat   = "Invalid dataUrl or unsupported image type."
)

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Indonesian))
	for key, id := range map[string]string{
		msgInvalidRequest:   "Permintaan tidak valid.",
		msgNotFound:         "Entri tidak ditemukan.",
		msgConflict:         "Data berubah saat diproses, silakan coba lagi.",
		msgUpstream:         "Layanan eksternal tidak dapat dihubungi.",
		msgUnauthorized:     "Autentikasi diperlukan.",
		msgMisconfigured:    "Konfigurasi server tidak lengkap.",
		msgInternal:         "Terjadi kesalahan pada server.",
		msgTooLarge:         "Ukuran permintaan terlalu besar.",
		msgTooMany:          "Terlalu banyak permintaan, coba lagi nanti.",
		msgRouteNotFound:    "Rute tidak ditemukan.",
		msgMethodNotAllowed: "Method %s tidak diizinkan.",
		msgCreated:          "Data untuk '%s' berhasil diproses!",
		msgStatusUpdated:    "Status untuk '%s' berhasil diubah.",
		msgPaymentFound:     "Pembayaran terdeteksi. Status ditandai Berhasil.",
		msgPaymentMissing:   "Belum ditemukan pembayaran masuk.",
		msgSettingsSaved:    "Konfigurasi disimpan.",
		msgUploaded:         "Berkas berhasil diunggah.",
		msgUploadKind:       "kind harus avatar atau cover.",
		msgUploadFormat:     "Format dataUrl tidak valid atau mime tidak didukung.",
	} {
		_ = b.SetString(language.Indonesian, key, id)
		_ = b.SetString(language.English, key, key)
	}
	return b
}
