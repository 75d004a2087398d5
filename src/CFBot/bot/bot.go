package bot

import (
	"fmt"
	"log"

	"github.com/castforge/castforge/src/CFBot/components/decision"
	"github.com/castforge/castforge/src/CFBot/components/gate"
	"github.com/castforge/castforge/src/CFBot/components/memory"
	"github.com/castforge/castforge/src/CFBot/components/minter"
	"github.com/castforge/castforge/src/CFBot/components/notify"
	"github.com/castforge/castforge/src/CFBot/components/pipeline"
	"github.com/castforge/castforge/src/CFBot/config"
	"github.com/castforge/castforge/src/shared/ai"
	"github.com/castforge/castforge/src/shared/farcaster"
	"github.com/castforge/castforge/src/shared/ipfs"
	"github.com/castforge/castforge/src/shared/issuance"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Config struct {
	App   config.Config
	DB    *gorm.DB
	Redis *redis.Client // optional
}

// Bot owns the component graph; the webserver only sees the pipeline.
type Bot struct {
	config   Config
	pipeline *pipeline.Pipeline
	notifier *notify.Discord
}

func New(cfg Config) (*Bot, error) {
	app := cfg.App

	social := farcaster.NewClient(app.FarcasterAPIURL, app.FarcasterAPIKey, app.SignerUUID)
	storage := ipfs.NewClient(app.PinataURL, app.PinataJWT, nil)
	issuer := issuance.NewClient(app.IssuanceURL, app.IssuanceAPIKey)

	var g gate.Gate
	if app.GateBackend == "redis" {
		if cfg.Redis == nil {
			return nil, fmt.Errorf("gate backend redis requires REDIS_URL")
		}
		g = gate.NewRedis(cfg.Redis)
	} else {
		g = gate.NewMemory()
	}

	var aiClient ai.Client
	if app.AdvisoryEnabled {
		aiClient = ai.NewClient(ai.FactoryConfig{
			Provider:  app.AIProvider,
			OpenAIKey: app.OpenAIKey,
			ClaudeKey: app.ClaudeKey,
			Model:     app.AIModel,
		})
	}

	var analyses decision.Analyzer
	if aiClient != nil {
		analyses = decision.NewAnalysisStore(cfg.DB, aiClient)
	}

	engine := decision.NewEngine(decision.Config{
		AI:                  aiClient,
		Social:              social,
		Analyses:            analyses,
		AdvisoryEnabled:     app.AdvisoryEnabled,
		CastPreviewTemplate: app.CastPreviewTemplate,
	})

	notifier, err := notify.NewDiscord(app.DiscordToken, app.DiscordChannelID)
	if err != nil {
		log.Printf("WARNING: discord notifier disabled: %v", err)
		notifier = nil
	}

	replier := &pipeline.GateReplier{Social: social, Gate: g}
	mint := minter.New(minter.Config{
		Social:           social,
		Storage:          storage,
		Issuer:           issuer,
		Replier:          replier,
		Ledger:           &minter.GormLedger{DB: cfg.DB},
		Notifier:         notifier,
		Redis:            cfg.Redis,
		DryRun:           app.DryRun,
		PlatformReferrer: app.PlatformReferrer,
		ViewerBase:       app.ViewerBaseURL,
	})

	mem := memory.NewStore(cfg.DB)

	pipe := pipeline.New(pipeline.Config{
		Gate:      g,
		Social:    social,
		Decider:   engine,
		Minter:    mint,
		Memory:    mem,
		BotFID:    app.BotFID,
		BotHandle: app.BotHandle,
	})

	return &Bot{config: cfg, pipeline: pipe, notifier: notifier}, nil
}

func (b *Bot) Pipeline() *pipeline.Pipeline {
	return b.pipeline
}

func (b *Bot) Start() error {
	if err := b.notifier.Open(); err != nil {
		log.Printf("WARNING: discord notifier failed to open: %v", err)
	}
	if b.config.App.DryRun {
		log.Println("CastForge running in DRY RUN mode; no chain calls will be made")
	}
	return nil
}

// Stop lets in-flight tasks finish naturally before tearing anything down.
func (b *Bot) Stop() {
	b.pipeline.Wait()
	b.notifier.Close()
}
