package decision

import (
	"fmt"
	"strings"

	"github.com/castforge/castforge/src/CFBot/components/casts"
	"github.com/castforge/castforge/src/shared/farcaster"
	"github.com/castforge/castforge/src/shared/types"
)

// Fixed copy for the deterministic path. Advisory failures are never surfaced
// verbatim to the user.
const (
	msgFallbackCreate = "Love it! Minting your token now. 🎨"
	msgEncourage      = "Great looking piece! Say the word, something like \"make this a coin\", and I'll mint it for you. 🎨"
	msgHelp           = "gm! Attach an image and mention me with what you'd like to mint, or say \"mint this cast\" to tokenize a cast itself."
)

// fallbackDecision is the deterministic second tier: applied when the
// advisory call fails, returns unparseable output, or is disabled outright.
func fallbackDecision(text, imageURL string, analysis *types.ImageAnalysis, explicitName, explicitSymbol string) Decision {
	lower := strings.ToLower(text)
	wantsToken := strings.Contains(lower, "coin") || strings.Contains(lower, "token")

	if imageURL != "" && wantsToken {
		name := explicitName
		if name == "" && analysis != nil {
			if names := decodeStrings(analysis.SuggestedNames); len(names) > 0 {
				name = names[0]
			}
		}
		if name == "" {
			name = "Mystery Art"
		}
		symbol := explicitSymbol
		if symbol == "" && analysis != nil {
			if symbols := decodeStrings(analysis.SuggestedSymbols); len(symbols) > 0 {
				symbol = strings.ToUpper(symbols[0])
			}
		}
		if symbol == "" {
			symbol = casts.GenerateSymbolFromName(name)
		}
		description := "A unique piece of digital art"
		if analysis != nil && analysis.VisualDescription != "" {
			description = analysis.VisualDescription
		}
		return Decision{
			Action:      ActionCreateToken,
			Message:     msgFallbackCreate,
			Name:        name,
			Symbol:      symbol,
			Description: description,
		}
	}

	if imageURL != "" {
		return Decision{Action: ActionEncourage, Message: msgEncourage}
	}
	return Decision{Action: ActionHelp, Message: msgHelp}
}

// fallbackCastNaming names a tokenized cast when no explicit name exists and
// the advisory call cannot help.
func fallbackCastNaming(target *farcaster.Cast) (name, symbol, description string) {
	author := target.Author.DisplayName
	if author == "" {
		author = target.Author.Username
	}
	if author == "" {
		author = "Farcaster"
	}
	name = casts.TruncateName(author + " Cast")
	return name, "CAST", castDescription(target)
}

func castDescription(target *farcaster.Cast) string {
	excerpt := target.Text
	if runes := []rune(excerpt); len(runes) > 100 {
		excerpt = string(runes[:100])
	}
	return fmt.Sprintf("Tokenized cast: %q...", excerpt)
}
