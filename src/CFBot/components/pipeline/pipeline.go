package pipeline

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/castforge/castforge/src/CFBot/components/decision"
	"github.com/castforge/castforge/src/CFBot/components/gate"
	"github.com/castforge/castforge/src/CFBot/components/memory"
	"github.com/castforge/castforge/src/shared/farcaster"
	"github.com/castforge/castforge/src/shared/types"
	"github.com/google/uuid"
)

const (
	// burstWindow drops replies that arrive right behind one of the bot's own
	// casts, breaking rapid reply loops between bots.
	burstWindow = 10 * time.Second
	// taskTimeout bounds one full processing pass including mint retries.
	taskTimeout = 4 * time.Minute
)

type Social interface {
	CastByHash(ctx context.Context, hash string) (*farcaster.Cast, error)
	PublishReply(ctx context.Context, parentHash, text string) (string, error)
}

type Decider interface {
	Decide(ctx context.Context, cast *farcaster.Cast, memctx memory.Context) (*decision.Outcome, error)
}

type Minter interface {
	Execute(ctx context.Context, out *decision.Outcome, trigger *farcaster.Cast) (string, error)
}

type Recorder interface {
	Record(ctx context.Context, conv types.Conversation) error
	Context(ctx context.Context, userFID uint64) memory.Context
}

type Config struct {
	Gate      gate.Gate
	Social    Social
	Decider   Decider
	Minter    Minter
	Memory    Recorder
	BotFID    uint64
	BotHandle string
}

// Pipeline processes webhook deliveries: the front door acknowledges
// immediately and each delivery runs as an independent background task.
// Within one task all steps are strictly sequential.
type Pipeline struct {
	config Config
	wg     sync.WaitGroup
}

// Event is one webhook delivery the front door accepted.
type Event struct {
	Type string
	Hash string
	// DeliveryKey is the cooldown key: the cast hash, or a body digest when
	// the payload carried none.
	DeliveryKey string
}

func New(config Config) *Pipeline {
	return &Pipeline{config: config}
}

// Accept gates one delivery and, when it passes, schedules background
// processing. Returns false when the cooldown dropped it. Cheap by design:
// it runs on the webhook request path.
func (p *Pipeline) Accept(event Event) bool {
	if p.config.Gate.CooldownActive(event.DeliveryKey) {
		log.Printf("pipeline: cooldown drop %s", event.DeliveryKey)
		return false
	}
	p.config.Gate.MarkCooldown(event.DeliveryKey)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(event)
	}()
	return true
}

// Wait blocks until in-flight tasks finish; used on shutdown.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) run(event Event) {
	taskID := uuid.NewString()[:8]
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s] pipeline: panic processing %s: %v", taskID, event.Hash, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	p.Process(ctx, taskID, event)
}

// Process runs one cast through the full pipeline. Exported for tests; the
// production path always enters through Accept.
func (p *Pipeline) Process(ctx context.Context, taskID string, event Event) {
	hash := event.Hash
	if hash == "" {
		return
	}
	if !p.config.Gate.MarkSeen(hash) {
		log.Printf("[%s] pipeline: already processed %s", taskID, hash)
		return
	}

	cast, err := p.config.Social.CastByHash(ctx, hash)
	if err != nil {
		log.Printf("[%s] pipeline: fetch cast %s: %v", taskID, hash, err)
		p.config.Gate.ClearCooldown(event.DeliveryKey)
		return
	}
	if cast == nil {
		log.Printf("[%s] pipeline: cast %s not found", taskID, hash)
		return
	}

	// Loop prevention: never react to our own casts, nor to replies arriving
	// hot on the heels of one of our replies.
	if cast.Author.FID == p.config.BotFID {
		return
	}
	if cast.ParentHash != "" && p.config.Gate.RepliedRecently(cast.ParentHash, burstWindow) {
		log.Printf("[%s] pipeline: burst-loop drop %s", taskID, hash)
		return
	}

	if !p.mentionsBot(cast) {
		return
	}

	log.Printf("[%s] pipeline: processing mention from @%s (%s)", taskID, cast.Author.Username, hash)

	memctx := p.config.Memory.Context(ctx, cast.Author.FID)
	out, err := p.config.Decider.Decide(ctx, cast, memctx)
	if err != nil {
		log.Printf("[%s] pipeline: decide %s: %v", taskID, hash, err)
		p.config.Gate.ClearCooldown(event.DeliveryKey)
		return
	}

	replyText := out.Decision.Message
	if out.Decision.IsCreation() {
		replyText, err = p.config.Minter.Execute(ctx, out, cast)
		if err != nil {
			// The minter already answered the user; the seen-set entry stays
			// so the creation is not blindly re-run, only the cooldown clears.
			log.Printf("[%s] pipeline: mint %s: %v", taskID, hash, err)
			p.config.Gate.ClearCooldown(event.DeliveryKey)
		}
	} else {
		replyHash, err := p.config.Social.PublishReply(ctx, cast.Hash, out.Decision.Message)
		if err != nil {
			log.Printf("[%s] pipeline: reply to %s: %v", taskID, hash, err)
		} else {
			p.config.Gate.RecordReply(replyHash)
		}
	}

	if err := p.config.Memory.Record(ctx, types.Conversation{
		UserFID:   cast.Author.FID,
		CastHash:  cast.Hash,
		UserText:  cast.Text,
		ReplyText: replyText,
		ImageURL:  out.ImageURL,
		Action:    string(out.Decision.Action),
	}); err != nil {
		log.Printf("[%s] pipeline: record conversation %s: %v", taskID, hash, err)
	}
}

func (p *Pipeline) mentionsBot(cast *farcaster.Cast) bool {
	if cast.Mentions(p.config.BotFID) {
		return true
	}
	return p.config.BotHandle != "" &&
		strings.Contains(strings.ToLower(cast.Text), "@"+strings.ToLower(p.config.BotHandle))
}
