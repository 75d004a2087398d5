package notify

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord posts mint announcements to an ops channel. Entirely optional: a
// nil *Discord is a no-op notifier.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscord returns nil when token or channel are unset.
func NewDiscord(token, channelID string) (*Discord, error) {
	if token == "" || channelID == "" {
		return nil, nil
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID}, nil
}

func (d *Discord) Open() error {
	if d == nil {
		return nil
	}
	return d.session.Open()
}

func (d *Discord) Close() {
	if d == nil {
		return
	}
	d.session.Close()
}

func (d *Discord) TokenMinted(name, symbol, contractAddress, viewerURL string) {
	if d == nil {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Token minted",
		Description: fmt.Sprintf("**%s** ($%s)", name, symbol),
		Color:       0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Contract", Value: contractAddress},
			{Name: "Viewer", Value: viewerURL},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if _, err := d.session.ChannelMessageSendEmbed(d.channelID, embed); err != nil {
		log.Printf("notify: discord send: %v", err)
	}
}
