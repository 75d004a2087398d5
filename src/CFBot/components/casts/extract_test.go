package casts

import (
	"testing"

	"github.com/castforge/castforge/src/shared/farcaster"
)

func TestExtractImagePrefersDeclaredMIME(t *testing.T) {
	cast := &farcaster.Cast{
		Embeds: []farcaster.Embed{
			{URL: "https://example.com/page.html"},
			{URL: "https://example.com/art", MIMEType: "image/png"},
		},
	}
	if got := ExtractImage(cast); got != "https://example.com/art" {
		t.Errorf("ExtractImage = %q, want declared-MIME embed", got)
	}
}

func TestExtractImageURLHeuristic(t *testing.T) {
	cast := &farcaster.Cast{
		Embeds: []farcaster.Embed{
			{URL: "https://example.com/doc.pdf"},
			{URL: "https://example.com/photo.webp?w=800"},
		},
	}
	if got := ExtractImage(cast); got != "https://example.com/photo.webp?w=800" {
		t.Errorf("ExtractImage = %q, want extension match", got)
	}
}

func TestExtractImageExplicitImageField(t *testing.T) {
	cast := &farcaster.Cast{
		Embeds: []farcaster.Embed{
			{URL: "https://example.com/frame", Image: "https://cdn.example.com/resolved"},
		},
	}
	if got := ExtractImage(cast); got != "https://cdn.example.com/resolved" {
		t.Errorf("ExtractImage = %q, want explicit image field", got)
	}
}

func TestExtractImageLegacyMediaAndDirectList(t *testing.T) {
	cast := &farcaster.Cast{
		EmbeddedMedia: []farcaster.Embed{{URL: "https://example.com/old.gif"}},
	}
	if got := ExtractImage(cast); got != "https://example.com/old.gif" {
		t.Errorf("ExtractImage = %q, want legacy media", got)
	}

	cast = &farcaster.Cast{ImageURLs: []string{"https://example.com/a", "https://example.com/b"}}
	if got := ExtractImage(cast); got != "https://example.com/a" {
		t.Errorf("ExtractImage = %q, want first direct image URL", got)
	}
}

func TestExtractImageAbsent(t *testing.T) {
	cast := &farcaster.Cast{
		Embeds: []farcaster.Embed{{URL: "https://example.com/article"}},
	}
	if got := ExtractImage(cast); got != "" {
		t.Errorf("ExtractImage = %q, want empty for no image", got)
	}
}
