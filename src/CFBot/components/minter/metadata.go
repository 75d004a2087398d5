package minter

import (
	"context"
	"log"

	"github.com/castforge/castforge/src/CFBot/components/decision"
	"github.com/microcosm-cc/bluemonday"
)

var descriptionPolicy = bluemonday.StrictPolicy()

// Metadata is the token metadata object published to content-addressable
// storage. The issuance service requires name, description and image.
type Metadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

func buildMetadata(dec decision.Decision, imageURL string) Metadata {
	return Metadata{
		Name:        dec.Name,
		Symbol:      dec.Symbol,
		Description: descriptionPolicy.Sanitize(dec.Description),
		Image:       imageURL,
		Category:    "social",
	}
}

// validateMetadata confirms the published object is fetchable and carries the
// mandatory fields. Best effort: a failure is logged, never blocks minting.
func (m *Minter) validateMetadata(ctx context.Context, uri string) {
	obj, err := m.config.Storage.Fetch(ctx, uri)
	if err != nil {
		log.Printf("minter: metadata validation fetch %s: %v", uri, err)
		return
	}
	for _, field := range []string{"name", "description", "image"} {
		v, ok := obj[field].(string)
		if !ok || v == "" {
			log.Printf("minter: metadata %s missing field %q", uri, field)
		}
	}
}
