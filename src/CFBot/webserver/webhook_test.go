package webserver

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/castforge/castforge/src/CFBot/components/pipeline"
	"github.com/castforge/castforge/src/CFBot/config"
	"github.com/gin-gonic/gin"
)

const testSecret = "test-webhook-secret"

type fakeProcessor struct {
	events []pipeline.Event
	accept bool
}

func (f *fakeProcessor) Accept(event pipeline.Event) bool {
	f.events = append(f.events, event)
	return f.accept
}

func newTestServer(proc *fakeProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(config.Config{WebhookSecret: testSecret}, proc, nil)
}

func sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(g *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestWebhookChallengeEcho(t *testing.T) {
	proc := &fakeProcessor{}
	g := newTestServer(proc)

	// The handshake carries no signature and must still be answered.
	w := postWebhook(g, []byte(`{"challenge":"abc123"}`), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["challenge"] != "abc123" {
		t.Errorf("challenge = %q", resp["challenge"])
	}
	if len(proc.events) != 0 {
		t.Error("handshake must not reach the pipeline")
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	proc := &fakeProcessor{}
	g := newTestServer(proc)

	body := []byte(`{"type":"cast.created","data":{"hash":"0xabc"}}`)
	w := postWebhook(g, body, "deadbeef")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(proc.events) != 0 {
		t.Error("unsigned delivery reached the pipeline")
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	proc := &fakeProcessor{}
	g := newTestServer(proc)

	body := []byte(`{"type":"cast.created","data":{"hash":"0xabc"}}`)
	if w := postWebhook(g, body, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestWebhookAcceptsCastCreated(t *testing.T) {
	proc := &fakeProcessor{accept: true}
	g := newTestServer(proc)

	body := []byte(`{"type":"cast.created","data":{"hash":"0xabc"}}`)
	w := postWebhook(g, body, sign(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(proc.events) != 1 {
		t.Fatalf("events = %d, want 1", len(proc.events))
	}
	evt := proc.events[0]
	if evt.Type != "cast.created" || evt.Hash != "0xabc" || evt.DeliveryKey != "0xabc" {
		t.Errorf("event = %+v", evt)
	}
	if !strings.Contains(w.Body.String(), `"accepted":true`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	proc := &fakeProcessor{}
	g := newTestServer(proc)

	body := []byte(`{"type":"reaction.created","data":{"hash":"0xabc"}}`)
	w := postWebhook(g, body, sign(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 ack", w.Code)
	}
	if len(proc.events) != 0 {
		t.Error("ignored event type reached the pipeline")
	}
}

func TestWebhookMissingHashGetsBodyKey(t *testing.T) {
	proc := &fakeProcessor{accept: true}
	g := newTestServer(proc)

	body := []byte(`{"type":"post.created","data":{}}`)
	w := postWebhook(g, body, sign(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(proc.events) != 1 {
		t.Fatalf("events = %d", len(proc.events))
	}
	if !strings.HasPrefix(proc.events[0].DeliveryKey, "body-") {
		t.Errorf("delivery key = %q, want a body digest", proc.events[0].DeliveryKey)
	}
}

func TestHealthz(t *testing.T) {
	g := newTestServer(&fakeProcessor{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAdminAPIDisabledWithoutSecret(t *testing.T) {
	g := newTestServer(&fakeProcessor{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/creations", nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when no JWT secret is configured", w.Code)
	}
}
