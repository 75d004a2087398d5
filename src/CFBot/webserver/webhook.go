package webserver

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/OneOfOne/xxhash"
	"github.com/castforge/castforge/src/CFBot/components/pipeline"
	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-CastForge-Signature"

type webhookHandler struct {
	secret string
	pipe   Processor
}

// handle acknowledges deliveries immediately; all real work happens in a
// background pipeline task.
func (h *webhookHandler) handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "unreadable body"})
		return
	}

	// Subscription handshake: echo the challenge before anything else.
	var handshake struct {
		Challenge string `json:"challenge"`
	}
	if json.Unmarshal(body, &handshake) == nil && handshake.Challenge != "" {
		c.JSON(http.StatusOK, gin.H{"challenge": handshake.Challenge})
		return
	}

	if h.secret != "" && !verifySignature(h.secret, body, c.GetHeader(signatureHeader)) {
		log.Printf("webhook: bad signature from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid signature"})
		return
	}

	var evt struct {
		Type string `json:"type"`
		Data struct {
			Hash string `json:"hash"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid payload"})
		return
	}
	if evt.Type != "cast.created" && evt.Type != "post.created" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": evt.Type})
		return
	}

	key := evt.Data.Hash
	if key == "" {
		key = fmt.Sprintf("body-%x", xxhash.Checksum64(body))
	}
	accepted := h.pipe.Accept(pipeline.Event{
		Type:        evt.Type,
		Hash:        evt.Data.Hash,
		DeliveryKey: key,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true, "accepted": accepted})
}

func verifySignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
