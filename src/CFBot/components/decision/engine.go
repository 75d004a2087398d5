package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/castforge/castforge/src/CFBot/components/casts"
	"github.com/castforge/castforge/src/CFBot/components/memory"
	"github.com/castforge/castforge/src/shared/ai"
	"github.com/castforge/castforge/src/shared/farcaster"
	"github.com/castforge/castforge/src/shared/types"
)

// Social is the slice of the social-graph client the engine needs.
type Social interface {
	CastByHash(ctx context.Context, hash string) (*farcaster.Cast, error)
}

// Analyzer resolves or computes an image analysis.
type Analyzer interface {
	Analyze(ctx context.Context, imageURL string) (*types.ImageAnalysis, error)
}

type Config struct {
	AI       ai.Client
	Social   Social
	Analyses Analyzer
	// AdvisoryEnabled selects the two-tier mode; when false the engine runs
	// rule-only and never calls the advisory model.
	AdvisoryEnabled bool
	// CastPreviewTemplate is a fmt template producing the platform's rendered
	// preview image URL for a cast hash.
	CastPreviewTemplate string
	AdvisoryTimeout     time.Duration
}

// Engine turns one mention into a Decision. It never returns user-facing
// errors: every advisory failure lands in the deterministic fallback.
type Engine struct {
	config Config
}

func NewEngine(config Config) *Engine {
	if config.CastPreviewTemplate == "" {
		config.CastPreviewTemplate = "https://client.warpcast.com/v2/cast-image?castHash=%s"
	}
	if config.AdvisoryTimeout == 0 {
		config.AdvisoryTimeout = 30 * time.Second
	}
	return &Engine{config: config}
}

func (e *Engine) Decide(ctx context.Context, cast *farcaster.Cast, memctx memory.Context) (*Outcome, error) {
	if casts.IsCastMintRequest(cast.Text) {
		return e.decideCastMint(ctx, cast), nil
	}
	return e.decideRegular(ctx, cast, memctx), nil
}

// decideCastMint tokenizes a cast itself. When the trigger is a reply, its
// parent is the target, one level up and no further.
func (e *Engine) decideCastMint(ctx context.Context, cast *farcaster.Cast) *Outcome {
	target := cast
	if cast.ParentHash != "" {
		parent, err := e.config.Social.CastByHash(ctx, cast.ParentHash)
		if err != nil {
			log.Printf("decision: fetch parent %s: %v", cast.ParentHash, err)
		} else if parent != nil {
			target = parent
		}
	}

	imageURL := fmt.Sprintf(e.config.CastPreviewTemplate, target.Hash)

	var name, symbol, description string
	if explicit := casts.ExtractExplicitName(target.Text); explicit != "" {
		// A literal user-stated name wins outright; no advisory naming call.
		name = explicit
		symbol = casts.ExtractExplicitSymbol(target.Text)
		if symbol == "" {
			symbol = casts.GenerateSymbolFromName(name)
		}
		description = castDescription(target)
	} else if e.config.AdvisoryEnabled {
		name, symbol, description = e.adviseCastNaming(ctx, target)
	} else {
		name, symbol, description = fallbackCastNaming(target)
	}

	message := fmt.Sprintf("Minting this cast as a token: \"%s\" ($%s). 🎨", name, symbol)
	return &Outcome{
		Decision: Decision{
			Action:      ActionCreateCastToken,
			Message:     message,
			Name:        name,
			Symbol:      symbol,
			Description: description,
		},
		ImageURL: imageURL,
		Target:   target,
	}
}

func (e *Engine) adviseCastNaming(ctx context.Context, target *farcaster.Cast) (name, symbol, description string) {
	callCtx, cancel := context.WithTimeout(ctx, e.config.AdvisoryTimeout)
	defer cancel()

	prompt := fmt.Sprintf(castNamingPrompt, target.Author.Username, target.Text)
	raw, err := e.config.AI.Complete(callCtx, "", []ai.Message{{Role: "user", Text: prompt}}, ai.Options{})
	if err != nil {
		log.Printf("decision: cast naming call: %v", err)
		return fallbackCastNaming(target)
	}

	payload, err := extractJSON(raw)
	if err != nil {
		log.Printf("decision: cast naming output: %v", err)
		return fallbackCastNaming(target)
	}
	var suggestion struct {
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(payload), &suggestion); err != nil || suggestion.Name == "" || suggestion.Symbol == "" {
		log.Printf("decision: cast naming parse failed")
		return fallbackCastNaming(target)
	}
	name = casts.TruncateName(suggestion.Name)
	description = suggestion.Description
	if description == "" {
		description = castDescription(target)
	}
	return name, strings.ToUpper(suggestion.Symbol), description
}

func (e *Engine) decideRegular(ctx context.Context, cast *farcaster.Cast, memctx memory.Context) *Outcome {
	imageURL := casts.ExtractImage(cast)

	var analysis *types.ImageAnalysis
	if imageURL != "" && e.config.Analyses != nil {
		a, err := e.config.Analyses.Analyze(ctx, imageURL)
		if err != nil {
			log.Printf("decision: analyze %s: %v", imageURL, err)
		} else {
			analysis = a
		}
	}

	explicitName := casts.ExtractExplicitName(cast.Text)
	explicitSymbol := casts.ExtractExplicitSymbol(cast.Text)

	var dec Decision
	if e.config.AdvisoryEnabled {
		dec = e.adviseDecision(ctx, cast.Text, imageURL, analysis, explicitName, explicitSymbol, memctx)
	} else {
		dec = fallbackDecision(cast.Text, imageURL, analysis, explicitName, explicitSymbol)
	}

	applyExplicitOverride(&dec, explicitName, explicitSymbol)

	return &Outcome{Decision: dec, ImageURL: imageURL, Target: cast, Analysis: analysis}
}

func (e *Engine) adviseDecision(ctx context.Context, text, imageURL string, analysis *types.ImageAnalysis,
	explicitName, explicitSymbol string, memctx memory.Context) Decision {
	callCtx, cancel := context.WithTimeout(ctx, e.config.AdvisoryTimeout)
	defer cancel()

	prompt := buildDecisionPrompt(text, analysis, explicitName, memctx)
	raw, err := e.config.AI.Complete(callCtx, personaPrompt, []ai.Message{{Role: "user", Text: prompt}}, ai.Options{})
	if err != nil {
		log.Printf("decision: advisory call: %v", err)
		return fallbackDecision(text, imageURL, analysis, explicitName, explicitSymbol)
	}

	dec, err := decodeDecision(raw)
	if err != nil {
		log.Printf("decision: %v", err)
		return fallbackDecision(text, imageURL, analysis, explicitName, explicitSymbol)
	}
	// The regular path never creates without an image; the advisory model is
	// not trusted to know that.
	if imageURL == "" && dec.Action == ActionCreateToken {
		return fallbackDecision(text, imageURL, analysis, explicitName, explicitSymbol)
	}
	return dec
}

// applyExplicitOverride keeps the advisory reply message but replaces the
// suggested name and symbol with what the user literally typed.
func applyExplicitOverride(dec *Decision, explicitName, explicitSymbol string) {
	if !dec.IsCreation() || explicitName == "" {
		return
	}
	dec.Name = explicitName
	if explicitSymbol != "" {
		dec.Symbol = explicitSymbol
	} else {
		dec.Symbol = casts.GenerateSymbolFromName(explicitName)
	}
}
