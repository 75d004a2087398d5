package types

import (
	"time"

	"gorm.io/datatypes"
)

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// Cached visual analysis of an image, keyed by its URL. Rows are written once
// on first analysis and read forever after; there is no eviction.
type ImageAnalysis struct {
	ID                uint64         `gorm:"primaryKey"`
	URL               string         `gorm:"size:512;uniqueIndex;not null"`
	ArtisticStyle     string         `gorm:"size:128"`
	ColorPalette      string         `gorm:"size:256"`
	Mood              string         `gorm:"size:128"`
	CompositionNotes  string         `gorm:"type:text"`
	SuggestedNames    datatypes.JSON `gorm:"type:json"`
	SuggestedSymbols  datatypes.JSON `gorm:"type:json"`
	ArtisticElements  datatypes.JSON `gorm:"type:json"`
	VisualDescription string         `gorm:"type:text"`
	RawResponse       string         `gorm:"type:text"`
	CreatedAt         time.Time
}

// One bot interaction per cast. A background trim keeps the 5 most recent
// rows per user; the write path itself never deletes.
type Conversation struct {
	ID        uint64 `gorm:"primaryKey"`
	UserFID   uint64 `gorm:"index;not null"`
	CastHash  string `gorm:"size:66;uniqueIndex;not null"`
	UserText  string `gorm:"type:text"`
	ReplyText string `gorm:"type:text"`
	ImageURL  string `gorm:"size:512"`
	Action    string `gorm:"size:32"`
	CreatedAt time.Time
}

// Append-only ledger of completed token creations. Never updated or deleted.
type TokenCreation struct {
	ID              uint64 `gorm:"primaryKey"`
	UserFID         uint64 `gorm:"index;not null"`
	ContractAddress string `gorm:"size:42;not null"`
	Name            string `gorm:"size:64;not null"`
	Symbol          string `gorm:"size:16;not null"`
	ImageURL        string `gorm:"size:512"`
	Description     string `gorm:"type:text"`
	RequestText     string `gorm:"type:text"`
	ViewerURL       string `gorm:"size:256"`
	TxHash          string `gorm:"size:66"`
	AnalysisID      *uint64
	CreatedAt       time.Time
}

func (ImageAnalysis) TableName() string { return "image_analyses" }
func (Conversation) TableName() string  { return "conversations" }
func (TokenCreation) TableName() string { return "ai_token_creations" }
