package config

import (
	"log"
	"os"
	"strconv"

	"github.com/castforge/castforge/src/shared/data"
	"gorm.io/gorm"
)

type Config struct {
	Port          string
	WebhookSecret string
	JWTSecret     string

	DBDriver string
	DBDSN    string
	RedisURL string

	BotFID    uint64
	BotHandle string

	FarcasterAPIURL string
	FarcasterAPIKey string
	SignerUUID      string

	AIProvider      string
	OpenAIKey       string
	ClaudeKey       string
	AIModel         string
	AdvisoryEnabled bool

	IssuanceURL    string
	IssuanceAPIKey string
	PinataURL      string
	PinataJWT      string

	PlatformReferrer    string
	ViewerBaseURL       string
	CastPreviewTemplate string

	DiscordToken     string
	DiscordChannelID string

	GateBackend string // "memory" or "redis"
	DryRun      bool
}

// Load reads configuration with database settings taking precedence over
// environment variables, the same overlay the rest of our services use.
func Load(db *gorm.DB) Config {
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		WebhookSecret: setting("webhook_secret", "WEBHOOK_SECRET", ""),
		JWTSecret:     setting("jwt_secret", "JWT_SECRET", ""),

		DBDriver: getenv("DB_DRIVER", "mysql"),
		DBDSN:    getenv("DB_DSN", "castforge:castforge@tcp(127.0.0.1:3306)/castforge"),
		RedisURL: getenv("REDIS_URL", ""),

		BotHandle: setting("bot_handle", "BOT_HANDLE", "castforge"),

		FarcasterAPIURL: setting("farcaster_api_url", "FARCASTER_API_URL", "https://api.neynar.com"),
		FarcasterAPIKey: setting("farcaster_api_key", "FARCASTER_API_KEY", ""),
		SignerUUID:      setting("signer_uuid", "SIGNER_UUID", ""),

		AIProvider:      setting("ai_provider", "AI_PROVIDER", "openai"),
		OpenAIKey:       getenv("OPENAI_API_KEY", ""),
		ClaudeKey:       getenv("CLAUDE_API_KEY", ""),
		AIModel:         setting("ai_model", "AI_MODEL", ""),
		AdvisoryEnabled: boolSetting("advisory_enabled", "ADVISORY_ENABLED", true),

		IssuanceURL:    setting("issuance_url", "ISSUANCE_URL", ""),
		IssuanceAPIKey: setting("issuance_api_key", "ISSUANCE_API_KEY", ""),
		PinataURL:      setting("pinata_url", "PINATA_URL", "https://api.pinata.cloud"),
		PinataJWT:      getenv("PINATA_JWT", ""),

		PlatformReferrer:    setting("platform_referrer", "PLATFORM_REFERRER", ""),
		ViewerBaseURL:       setting("viewer_base_url", "VIEWER_BASE_URL", "https://castforge.xyz/token"),
		CastPreviewTemplate: setting("cast_preview_template", "CAST_PREVIEW_TEMPLATE", ""),

		DiscordToken:     getenv("DISCORD_TOKEN", ""),
		DiscordChannelID: setting("discord_channel_id", "DISCORD_CHANNEL_ID", ""),

		GateBackend: setting("gate_backend", "GATE_BACKEND", "memory"),
		DryRun:      boolSetting("dry_run", "DRY_RUN", false),
	}

	fidStr := setting("bot_fid", "BOT_FID", "")
	if fidStr == "" {
		log.Fatal("BOT_FID not set in database or environment")
	}
	fid, err := strconv.ParseUint(fidStr, 10, 64)
	if err != nil {
		log.Fatalf("invalid BOT_FID %q: %v", fidStr, err)
	}
	cfg.BotFID = fid

	if cfg.FarcasterAPIKey == "" {
		log.Fatal("FARCASTER_API_KEY not set in database or environment")
	}

	return cfg
}

func setting(name, envKey, def string) string {
	if v := data.GetSetting(name); v != "" {
		return v
	}
	return getenv(envKey, def)
}

func boolSetting(name, envKey string, def bool) bool {
	v := setting(name, envKey, "")
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
