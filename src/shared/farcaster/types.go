package farcaster

import "time"

type User struct {
	FID                uint64
	Username           string
	DisplayName        string
	VerifiedETHAddress string
}

// Embed is a structured attachment reference on a cast.
type Embed struct {
	URL      string
	MIMEType string // declared content type from hub metadata, may be empty
	Image    string // pre-resolved image URL, set by some API surfaces
}

// Cast is immutable once fetched; it lives in memory for one processing pass
// and is never persisted.
type Cast struct {
	Hash            string
	Author          User
	Text            string
	Timestamp       time.Time
	ParentHash      string
	ParentAuthorFID uint64
	Embeds          []Embed
	EmbeddedMedia   []Embed // legacy hub shape, kept for older responses
	ImageURLs       []string
	MentionedFIDs   []uint64
}

// Mentions reports whether fid appears in the cast's mention list.
func (c *Cast) Mentions(fid uint64) bool {
	for _, m := range c.MentionedFIDs {
		if m == fid {
			return true
		}
	}
	return false
}
