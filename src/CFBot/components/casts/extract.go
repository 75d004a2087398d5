package casts

import (
	"strings"

	"github.com/castforge/castforge/src/shared/farcaster"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"}

// ExtractImage finds the best candidate image URL on a cast. Declared MIME
// metadata wins over URL heuristics; legacy media and direct image lists come
// last. Empty string means no image, which callers must treat as a normal
// outcome and not a fault.
func ExtractImage(cast *farcaster.Cast) string {
	for _, e := range cast.Embeds {
		if e.URL != "" && strings.HasPrefix(strings.ToLower(e.MIMEType), "image/") {
			return e.URL
		}
	}
	for _, e := range cast.Embeds {
		if looksLikeImageURL(e.URL) {
			return e.URL
		}
	}
	for _, e := range cast.Embeds {
		if e.Image != "" {
			return e.Image
		}
	}
	for _, e := range cast.EmbeddedMedia {
		if e.URL != "" && strings.HasPrefix(strings.ToLower(e.MIMEType), "image/") {
			return e.URL
		}
		if looksLikeImageURL(e.URL) {
			return e.URL
		}
	}
	if len(cast.ImageURLs) > 0 {
		return cast.ImageURLs[0]
	}
	return ""
}

func looksLikeImageURL(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return strings.Contains(lower, "image")
}
