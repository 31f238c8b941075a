package server

import (
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// handleQR renders a PNG QR code linking to the game's play screen so a
// phone or second display can follow along.
func handleQR(publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := playURL(r, publicURL, gameIDFrom(r))
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "qr generation failed")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(png)
	}
}

// playURL prefers the configured public URL and otherwise derives one from
// the request, respecting X-Forwarded-Proto.
func playURL(r *http.Request, publicURL, id string) string {
	base := strings.TrimSuffix(publicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/play/" + id
}
