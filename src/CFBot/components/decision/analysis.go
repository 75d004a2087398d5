package decision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/castforge/castforge/src/shared/ai"
	"github.com/castforge/castforge/src/shared/types"
	"github.com/castforge/castforge/src/webclient"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxImageBytes caps downloads before they are base64-expanded into an
// advisory request.
const maxImageBytes = 8 << 20

// AnalysisStore memoizes visual analyses by image URL. First analysis of a
// URL costs one download and one advisory call; every later lookup is a
// database read.
type AnalysisStore struct {
	db         *gorm.DB
	ai         ai.Client
	httpClient *http.Client
	timeout    time.Duration
}

func NewAnalysisStore(db *gorm.DB, aiClient ai.Client) *AnalysisStore {
	return &AnalysisStore{
		db:         db,
		ai:         aiClient,
		httpClient: webclient.NewDefault(15 * time.Second),
		timeout:    30 * time.Second,
	}
}

func (s *AnalysisStore) Analyze(ctx context.Context, imageURL string) (*types.ImageAnalysis, error) {
	var cached types.ImageAnalysis
	err := s.db.WithContext(ctx).Where("url = ?", imageURL).First(&cached).Error
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("analysis lookup: %w", err)
	}

	b64, mime, err := s.download(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.ai.Complete(callCtx, "", []ai.Message{{
		Role:      "user",
		Text:      visionPrompt,
		ImageB64:  b64,
		ImageMIME: mime,
	}}, ai.Options{})
	if err != nil {
		return nil, fmt.Errorf("vision call: %w", err)
	}

	analysis := parseAnalysis(imageURL, raw)
	if err := s.db.WithContext(ctx).Create(analysis).Error; err != nil {
		// A concurrent task may have stored the same URL first; reuse theirs.
		var existing types.ImageAnalysis
		if lookupErr := s.db.WithContext(ctx).Where("url = ?", imageURL).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("store analysis: %w", err)
	}
	return analysis, nil
}

func (s *AnalysisStore) download(ctx context.Context, imageURL string) (b64, mime string, err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", "", err
	}
	mime = resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	return base64.StdEncoding.EncodeToString(data), mime, nil
}

type analysisPayload struct {
	ArtisticStyle     string   `json:"artistic_style"`
	ColorPalette      string   `json:"color_palette"`
	Mood              string   `json:"mood"`
	CompositionNotes  string   `json:"composition_notes"`
	SuggestedNames    []string `json:"suggested_names"`
	SuggestedSymbols  []string `json:"suggested_symbols"`
	ArtisticElements  []string `json:"artistic_elements"`
	VisualDescription string   `json:"visual_description"`
}

// parseAnalysis never fails: unparseable advisory output becomes the generic
// placeholder, stored like any other result so the URL is not re-analyzed.
func parseAnalysis(imageURL, raw string) *types.ImageAnalysis {
	payload, err := extractJSON(raw)
	if err != nil {
		log.Printf("analysis: unparseable output for %s: %v", imageURL, err)
		return placeholderAnalysis(imageURL, raw)
	}
	var p analysisPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		log.Printf("analysis: bad JSON for %s: %v", imageURL, err)
		return placeholderAnalysis(imageURL, raw)
	}
	if p.VisualDescription == "" {
		return placeholderAnalysis(imageURL, raw)
	}
	return &types.ImageAnalysis{
		URL:               imageURL,
		ArtisticStyle:     p.ArtisticStyle,
		ColorPalette:      p.ColorPalette,
		Mood:              p.Mood,
		CompositionNotes:  p.CompositionNotes,
		SuggestedNames:    encodeStrings(p.SuggestedNames),
		SuggestedSymbols:  encodeStrings(p.SuggestedSymbols),
		ArtisticElements:  encodeStrings(p.ArtisticElements),
		VisualDescription: p.VisualDescription,
		RawResponse:       raw,
	}
}

func placeholderAnalysis(imageURL, raw string) *types.ImageAnalysis {
	return &types.ImageAnalysis{
		URL:               imageURL,
		ArtisticStyle:     "digital artwork",
		ColorPalette:      "vibrant colors",
		Mood:              "creative",
		CompositionNotes:  "balanced composition",
		SuggestedNames:    encodeStrings([]string{"Mystery Art", "Hidden Gem", "Untitled Piece"}),
		SuggestedSymbols:  encodeStrings([]string{"ART", "GEM", "MYST"}),
		ArtisticElements:  encodeStrings([]string{"abstract forms"}),
		VisualDescription: "A unique piece of digital art",
		RawResponse:       raw,
	}
}

func encodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}

func decodeStrings(j datatypes.JSON) []string {
	var out []string
	_ = json.Unmarshal(j, &out)
	return out
}
