package decision

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/castforge/castforge/src/shared/farcaster"
)

func TestDecodeDecisionPlainJSON(t *testing.T) {
	raw := `{"action":"create_token","message":"Minting now!","name":"Sunset Dream","symbol":"sun"}`
	dec, err := decodeDecision(raw)
	if err != nil {
		t.Fatalf("decodeDecision: %v", err)
	}
	if dec.Action != ActionCreateToken {
		t.Errorf("action = %q", dec.Action)
	}
	if dec.Symbol != "SUN" {
		t.Errorf("symbol = %q, want uppercased SUN", dec.Symbol)
	}
}

func TestDecodeDecisionFencedOutput(t *testing.T) {
	raw := "Sure! Here is my decision:\n```json\n{\"action\":\"encourage\",\"message\":\"Nice art!\"}\n```\nLet me know."
	dec, err := decodeDecision(raw)
	if err != nil {
		t.Fatalf("decodeDecision: %v", err)
	}
	if dec.Action != ActionEncourage || dec.Message != "Nice art!" {
		t.Errorf("got %+v", dec)
	}
}

func TestDecodeDecisionRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no json", "I think you should mint it"},
		{"unknown action", `{"action":"dance","message":"hi"}`},
		{"empty message", `{"action":"help","message":"  "}`},
		{"creation without name", `{"action":"create_token","message":"ok","symbol":"SUN"}`},
		{"creation without symbol", `{"action":"create_cast_token","message":"ok","name":"Cast"}`},
		{"malformed", `{"action":"help","message":}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeDecision(tc.raw); err == nil {
				t.Errorf("decodeDecision(%q) succeeded, want error", tc.raw)
			}
		})
	}
}

func TestFallbackDecision(t *testing.T) {
	dec := fallbackDecision("make this a coin", "https://img.example/a.png", nil, "", "")
	if dec.Action != ActionCreateToken {
		t.Fatalf("action = %q, want create_token", dec.Action)
	}
	if dec.Name != "Mystery Art" {
		t.Errorf("name = %q", dec.Name)
	}

	dec = fallbackDecision("check this out", "https://img.example/a.png", nil, "", "")
	if dec.Action != ActionEncourage {
		t.Errorf("image without intent: action = %q, want encourage", dec.Action)
	}

	dec = fallbackDecision("hello there", "", nil, "", "")
	if dec.Action != ActionHelp {
		t.Errorf("no image: action = %q, want help", dec.Action)
	}
}

func TestCastDescriptionMultibyteExcerpt(t *testing.T) {
	target := &farcaster.Cast{Text: strings.Repeat("Ü", 150)}
	got := castDescription(target)
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt is invalid UTF-8: %q", got)
	}
}

func TestFallbackCastNamingMultibyteAuthor(t *testing.T) {
	target := &farcaster.Cast{
		Author: farcaster.User{DisplayName: strings.Repeat("Ö", 40)},
		Text:   "gm",
	}
	name, symbol, _ := fallbackCastNaming(target)
	if !utf8.ValidString(name) {
		t.Fatalf("name is invalid UTF-8: %q", name)
	}
	if utf8.RuneCountInString(name) > 30 {
		t.Errorf("name %q exceeds 30 characters", name)
	}
	if symbol != "CAST" {
		t.Errorf("symbol = %q", symbol)
	}
}

func TestFallbackDecisionUsesAnalysis(t *testing.T) {
	analysis := placeholderAnalysis("https://img.example/a.png", "")
	analysis.SuggestedNames = encodeStrings([]string{"Ocean Breeze", "Blue Hour"})
	analysis.SuggestedSymbols = encodeStrings([]string{"ob"})
	analysis.VisualDescription = "A calm seascape at dusk"

	dec := fallbackDecision("token please", "https://img.example/a.png", analysis, "", "")
	if dec.Name != "Ocean Breeze" || dec.Symbol != "OB" {
		t.Errorf("got name=%q symbol=%q", dec.Name, dec.Symbol)
	}
	if !strings.Contains(dec.Description, "seascape") {
		t.Errorf("description = %q", dec.Description)
	}
}
