package minter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/castforge/castforge/src/CFBot/components/decision"
	"github.com/castforge/castforge/src/shared/data"
	"github.com/castforge/castforge/src/shared/farcaster"
	"github.com/castforge/castforge/src/shared/issuance"
	"github.com/castforge/castforge/src/shared/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Fixed user-facing copy. User-input gaps get guidance, unrecovered failures
// get one empathetic message; raw errors never reach the user.
const (
	replyNeedAddress = "I'd love to mint this for you, but you need a verified Ethereum address on your profile first. Add one in your settings and mention me again!"
	replyNeedImage   = "I couldn't find an image to mint. Attach one to your cast and mention me again!"
	replyFailure     = "Something went wrong on my end while minting, I'm sorry! Please try again in a little while."
	replyDryRun      = "✨ (dry run) Your token \"%s\" ($%s) would be minted right now. No chain calls were made."
)

const (
	issuanceAttempts     = 3
	issuanceInitialDelay = 5 * time.Second
)

type Social interface {
	UserByFID(ctx context.Context, fid uint64) (*farcaster.User, error)
}

type Storage interface {
	PublishJSON(ctx context.Context, v interface{}) (string, error)
	Fetch(ctx context.Context, uri string) (map[string]interface{}, error)
}

type Issuer interface {
	CreateToken(ctx context.Context, req issuance.TokenRequest) (*issuance.TokenResult, error)
}

type Replier interface {
	Reply(ctx context.Context, parentHash, text string) error
}

type Ledger interface {
	Append(ctx context.Context, rec types.TokenCreation) error
}

type Notifier interface {
	TokenMinted(name, symbol, contractAddress, viewerURL string)
}

type Config struct {
	Social           Social
	Storage          Storage
	Issuer           Issuer
	Replier          Replier
	Ledger           Ledger
	Notifier         Notifier // optional
	Redis            *redis.Client
	DryRun           bool
	PlatformReferrer string
	ViewerBase       string
}

// Minter runs the token-minting sequence: preconditions, metadata publish,
// issuance with bounded retry, reply, ledger append.
type Minter struct {
	config Config
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(config Config) *Minter {
	return &Minter{config: config, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute is side-effecting only: it always answers the triggering cast
// itself and returns the reply text for the conversation record. A non-nil
// error marks an unrecovered failure (already answered with the fixed
// failure copy, no ledger row).
func (m *Minter) Execute(ctx context.Context, out *decision.Outcome, trigger *farcaster.Cast) (string, error) {
	dec := out.Decision

	addr := m.resolvePayoutAddress(ctx, trigger)
	if addr == "" {
		m.reply(ctx, trigger.Hash, replyNeedAddress)
		return replyNeedAddress, nil
	}

	if out.ImageURL == "" {
		m.reply(ctx, trigger.Hash, replyNeedImage)
		return replyNeedImage, nil
	}

	if m.config.DryRun {
		msg := fmt.Sprintf(replyDryRun, dec.Name, dec.Symbol)
		m.reply(ctx, trigger.Hash, msg)
		return msg, nil
	}

	uri, err := m.config.Storage.PublishJSON(ctx, buildMetadata(dec, out.ImageURL))
	if err != nil {
		m.reply(ctx, trigger.Hash, replyFailure)
		return replyFailure, fmt.Errorf("publish metadata: %w", err)
	}

	m.validateMetadata(ctx, uri)

	result, err := m.createWithRetry(ctx, issuance.TokenRequest{
		Name:               dec.Name,
		Symbol:             dec.Symbol,
		MetadataURI:        uri,
		PayoutRecipient:    addr,
		PlatformReferrer:   m.config.PlatformReferrer,
		InitialPurchaseWei: "0",
	})
	if err != nil {
		m.reply(ctx, trigger.Hash, replyFailure)
		return replyFailure, fmt.Errorf("create token %q: %w", dec.Name, err)
	}

	viewerURL := issuance.ViewerURL(m.config.ViewerBase, result.ContractAddress, m.config.PlatformReferrer)
	msg := strings.TrimSpace(dec.Message) + "\n\n" + viewerURL
	m.reply(ctx, trigger.Hash, msg)

	rec := types.TokenCreation{
		UserFID:         trigger.Author.FID,
		ContractAddress: result.ContractAddress,
		Name:            dec.Name,
		Symbol:          dec.Symbol,
		ImageURL:        out.ImageURL,
		Description:     dec.Description,
		RequestText:     trigger.Text,
		ViewerURL:       viewerURL,
		TxHash:          result.TxHash,
	}
	if out.Analysis != nil && out.Analysis.ID != 0 {
		id := out.Analysis.ID
		rec.AnalysisID = &id
	}
	if err := m.config.Ledger.Append(ctx, rec); err != nil {
		// The token exists on chain; a missed ledger row is log-only.
		log.Printf("minter: ledger append for %s: %v", result.ContractAddress, err)
	}

	if m.config.Redis != nil {
		if err := data.PublishMint(ctx, m.config.Redis, map[string]interface{}{
			"contract": result.ContractAddress,
			"name":     dec.Name,
			"symbol":   dec.Symbol,
			"user_fid": trigger.Author.FID,
			"tx_hash":  result.TxHash,
			"time":     time.Now().Unix(),
		}); err != nil {
			log.Printf("minter: publish mint event: %v", err)
		}
	}
	if m.config.Notifier != nil {
		m.config.Notifier.TokenMinted(dec.Name, dec.Symbol, result.ContractAddress, viewerURL)
	}

	log.Printf("minter: minted %q ($%s) at %s for fid %d", dec.Name, dec.Symbol, result.ContractAddress, trigger.Author.FID)
	return msg, nil
}

// createWithRetry retries only metadata-propagation failures: 3 attempts
// total, 5s/10s/20s backoff. Any other issuance error propagates at once.
func (m *Minter) createWithRetry(ctx context.Context, req issuance.TokenRequest) (*issuance.TokenResult, error) {
	delay := issuanceInitialDelay
	for attempt := 1; ; attempt++ {
		result, err := m.config.Issuer.CreateToken(ctx, req)
		if err == nil {
			return result, nil
		}
		if !issuance.IsTransientMetadata(err) || attempt >= issuanceAttempts {
			return nil, err
		}
		log.Printf("minter: attempt %d/%d for %q: %v; retrying in %s", attempt, issuanceAttempts, req.Name, err, delay)
		if sleepErr := m.sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
		delay *= 2
	}
}

func (m *Minter) resolvePayoutAddress(ctx context.Context, trigger *farcaster.Cast) string {
	addr := trigger.Author.VerifiedETHAddress
	if addr == "" {
		user, err := m.config.Social.UserByFID(ctx, trigger.Author.FID)
		if err != nil {
			log.Printf("minter: user lookup for fid %d: %v", trigger.Author.FID, err)
			return ""
		}
		if user != nil {
			addr = user.VerifiedETHAddress
		}
	}
	if !common.IsHexAddress(addr) {
		return ""
	}
	return common.HexToAddress(addr).Hex()
}

func (m *Minter) reply(ctx context.Context, parentHash, text string) {
	if err := m.config.Replier.Reply(ctx, parentHash, text); err != nil {
		log.Printf("minter: reply to %s: %v", parentHash, err)
	}
}

// GormLedger is the production Ledger over the append-only creations table.
type GormLedger struct {
	DB *gorm.DB
}

func (l *GormLedger) Append(ctx context.Context, rec types.TokenCreation) error {
	return l.DB.WithContext(ctx).Create(&rec).Error
}
