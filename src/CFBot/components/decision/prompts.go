package decision

import (
	"fmt"
	"strings"

	"github.com/castforge/castforge/src/CFBot/components/memory"
	"github.com/castforge/castforge/src/shared/types"
)

const personaPrompt = `You are CastForge, a friendly Farcaster bot that helps artists turn their work into tokens.
You receive one user message and context about the interaction. Decide what to do and respond with ONLY a JSON object, no prose:
{
  "action": "create_token" | "create_cast_token" | "clarify" | "help" | "encourage" | "celebrate",
  "message": "reply to post, warm and concise, max 300 characters",
  "name": "token name, only for create actions",
  "symbol": "ticker, only for create actions",
  "description": "one-sentence token description, only for create actions"
}
Choose create_token only when the user clearly asks to mint the attached image. When the user supplied an explicit name, use it verbatim. Be encouraging, never sarcastic.`

const visionPrompt = `Describe this image for token creation. Respond with ONLY a JSON object:
{
  "artistic_style": "...",
  "color_palette": "...",
  "mood": "...",
  "composition_notes": "...",
  "suggested_names": ["...", "...", "..."],
  "suggested_symbols": ["...", "...", "..."],
  "artistic_elements": ["...", "..."],
  "visual_description": "one or two sentences"
}`

const castNamingPrompt = `Suggest a token for this cast. Respond with ONLY a JSON object:
{"name": "max 30 chars", "symbol": "max 10 chars", "description": "one sentence"}

Cast by @%s:
%s`

func buildDecisionPrompt(text string, analysis *types.ImageAnalysis, explicitName string, memctx memory.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User message: %s\n", text)
	if analysis != nil {
		fmt.Fprintf(&b, "Attached image: %s. Style: %s. Mood: %s. Palette: %s.\n",
			analysis.VisualDescription, analysis.ArtisticStyle, analysis.Mood, analysis.ColorPalette)
		if names := decodeStrings(analysis.SuggestedNames); len(names) > 0 {
			fmt.Fprintf(&b, "Name ideas from the image: %s.\n", strings.Join(names, ", "))
		}
	} else {
		b.WriteString("No image attached.\n")
	}
	if explicitName != "" {
		fmt.Fprintf(&b, "The user explicitly named the token %q. Use this name.\n", explicitName)
	}
	fmt.Fprintf(&b, "This user has created %d tokens before.", memctx.CreationCount)
	if memctx.LastAction != "" {
		fmt.Fprintf(&b, " Their previous interaction ended with action %q.", memctx.LastAction)
	}
	return b.String()
}
