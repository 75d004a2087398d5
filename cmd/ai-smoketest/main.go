// Probe the advisory layer from the command line without standing up the bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/castforge/castforge/src/shared/ai"
)

var (
	providerFlag = flag.String("provider", "openai", "openai|claude")
	modelFlag    = flag.String("model", "", "Override model name")
	promptFlag   = flag.String("prompt", defaultPrompt, "User prompt")
	systemFlag   = flag.String("system", defaultSystemPrompt, "System prompt")
	timeoutFlag  = flag.Duration("timeout", 45*time.Second, "Call timeout")
	tempFlag     = flag.Float64("temp", 0.7, "Completion temperature")
)

const (
	defaultPrompt       = `A user cast "mint this sunset photo as a coin called Golden Hour" with an attached image. What would you do?`
	defaultSystemPrompt = "You are CastForge, a Farcaster bot that mints tokens from casts. Answer concisely."
)

func main() {
	log.SetFlags(0)
	flag.Parse()

	client := ai.NewClient(ai.FactoryConfig{
		Provider:    *providerFlag,
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		ClaudeKey:   os.Getenv("CLAUDE_API_KEY"),
		Model:       *modelFlag,
		Temperature: *tempFlag,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	reply, err := client.Complete(ctx, *systemFlag, []ai.Message{{Role: "user", Text: *promptFlag}}, ai.Options{})
	if err != nil {
		log.Fatalf("[%s] ERROR: %v", *providerFlag, err)
	}
	fmt.Printf("[%s] ok (%.1fs)\n%s\n", *providerFlag, time.Since(start).Seconds(), strings.TrimSpace(reply))
}
