package decision

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/castforge/castforge/src/shared/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func analysisDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.ImageAnalysis{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAnalyzeCacheHitSkipsAdvisory(t *testing.T) {
	db := analysisDB(t)
	model := &fakeAI{}
	store := NewAnalysisStore(db, model)

	seeded := &types.ImageAnalysis{
		URL:               "https://img.example/cached.png",
		ArtisticStyle:     "watercolor",
		Mood:              "serene",
		SuggestedNames:    encodeStrings([]string{"Ocean Breeze"}),
		SuggestedSymbols:  encodeStrings([]string{"OB"}),
		VisualDescription: "A calm seascape at dusk",
	}
	if err := db.Create(seeded).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := store.Analyze(context.Background(), "https://img.example/cached.png")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("advisory calls = %d, want 0 on cache hit", model.calls)
	}
	if got.ID != seeded.ID || got.ArtisticStyle != "watercolor" || got.VisualDescription != "A calm seascape at dusk" {
		t.Errorf("got %+v, want the cached row unchanged", got)
	}
	if names := decodeStrings(got.SuggestedNames); len(names) != 1 || names[0] != "Ocean Breeze" {
		t.Errorf("suggested names = %v", names)
	}
}

func TestAnalyzeStoresThenShortCircuits(t *testing.T) {
	db := analysisDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "png-bytes")
	}))
	defer srv.Close()

	model := &fakeAI{reply: `{"artistic_style":"pixel art","color_palette":"neon","mood":"playful",` +
		`"composition_notes":"centered","suggested_names":["Neon City"],"suggested_symbols":["NEON"],` +
		`"artistic_elements":["grid"],"visual_description":"A neon cityscape"}`}
	store := NewAnalysisStore(db, model)

	imageURL := srv.URL + "/art.png"
	first, err := store.Analyze(context.Background(), imageURL)
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	if model.calls != 1 {
		t.Fatalf("advisory calls = %d, want 1", model.calls)
	}
	if first.VisualDescription != "A neon cityscape" || first.ID == 0 {
		t.Errorf("stored analysis = %+v", first)
	}

	second, err := store.Analyze(context.Background(), imageURL)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if model.calls != 1 {
		t.Errorf("advisory calls = %d, want still 1 after the cache fill", model.calls)
	}
	if second.ID != first.ID {
		t.Errorf("second lookup returned row %d, want cached row %d", second.ID, first.ID)
	}
}
