package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/castforge/castforge/src/shared/farcaster"
	"github.com/castforge/castforge/src/shared/types"
)

type Action string

const (
	ActionCreateToken     Action = "create_token"
	ActionCreateCastToken Action = "create_cast_token"
	ActionClarify         Action = "clarify"
	ActionHelp            Action = "help"
	ActionEncourage       Action = "encourage"
	ActionCelebrate       Action = "celebrate"
)

// Decision is produced fresh per interaction and never persisted directly;
// only its consequences (reply, ledger row) are.
type Decision struct {
	Action      Action `json:"action"`
	Message     string `json:"message"`
	Name        string `json:"name,omitempty"`
	Symbol      string `json:"symbol,omitempty"`
	Description string `json:"description,omitempty"`
}

// Outcome bundles the decision with the content it applies to.
type Outcome struct {
	Decision Decision
	// ImageURL is the resolved token image: an attachment on the regular
	// path, a rendered cast preview on the cast-mint path.
	ImageURL string
	// Target is the cast being tokenized; differs from the trigger when a
	// reply asks to mint its parent.
	Target *farcaster.Cast
	// Analysis is set when a cached or fresh image analysis informed the
	// decision.
	Analysis *types.ImageAnalysis
}

func (d Decision) IsCreation() bool {
	return d.Action == ActionCreateToken || d.Action == ActionCreateCastToken
}

var validActions = map[Action]bool{
	ActionCreateToken:     true,
	ActionCreateCastToken: true,
	ActionClarify:         true,
	ActionHelp:            true,
	ActionEncourage:       true,
	ActionCelebrate:       true,
}

// decodeDecision treats the advisory output as an untrusted string: it either
// yields a fully-typed decision or an error, never a partial structure.
func decodeDecision(raw string) (Decision, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return Decision{}, err
	}
	var dec Decision
	if err := json.Unmarshal([]byte(payload), &dec); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}
	if !validActions[dec.Action] {
		return Decision{}, fmt.Errorf("decode decision: unknown action %q", dec.Action)
	}
	if strings.TrimSpace(dec.Message) == "" {
		return Decision{}, fmt.Errorf("decode decision: empty message")
	}
	if dec.IsCreation() && (strings.TrimSpace(dec.Name) == "" || strings.TrimSpace(dec.Symbol) == "") {
		return Decision{}, fmt.Errorf("decode decision: creation without name or symbol")
	}
	dec.Symbol = strings.ToUpper(strings.TrimSpace(dec.Symbol))
	dec.Name = strings.TrimSpace(dec.Name)
	return dec, nil
}

// extractJSON pulls the outermost JSON object out of model output that may be
// wrapped in prose or markdown fences.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in advisory output")
	}
	return raw[start : end+1], nil
}
