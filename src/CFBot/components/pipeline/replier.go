package pipeline

import (
	"context"

	"github.com/castforge/castforge/src/CFBot/components/gate"
)

// GateReplier publishes replies and records them with the gate so the
// burst-loop guard can recognize reactions to the bot's own casts.
type GateReplier struct {
	Social Social
	Gate   gate.Gate
}

func (r *GateReplier) Reply(ctx context.Context, parentHash, text string) error {
	hash, err := r.Social.PublishReply(ctx, parentHash, text)
	if err != nil {
		return err
	}
	r.Gate.RecordReply(hash)
	return nil
}
