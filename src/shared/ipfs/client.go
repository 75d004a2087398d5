package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/castforge/castforge/src/webclient"
)

// Default public gateways used to confirm a pinned object is reachable.
var DefaultGateways = []string{
	"https://gateway.pinata.cloud/ipfs/",
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
}

// Client pins JSON objects to content-addressable storage via a Pinata
// compatible pinning API and reads them back through public gateways.
type Client struct {
	pinURL     string
	jwt        string
	gateways   []string
	httpClient *http.Client
}

func NewClient(pinURL, jwt string, gateways []string) *Client {
	if len(gateways) == 0 {
		gateways = DefaultGateways
	}
	return &Client{
		pinURL:     pinURL,
		jwt:        jwt,
		gateways:   gateways,
		httpClient: webclient.NewDefault(15 * time.Second),
	}
}

// PublishJSON pins an object and returns its ipfs:// URI.
func (c *Client) PublishJSON(ctx context.Context, v interface{}) (string, error) {
	payload := map[string]interface{}{"pinataContent": v}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.pinURL+"/pinning/pinJSONToIPFS", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pin JSON: status %d: %s", resp.StatusCode, string(body))
	}
	var result struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("pin JSON: empty hash in response")
	}
	return "ipfs://" + result.IpfsHash, nil
}

// Fetch resolves an ipfs:// URI through the configured gateways, first
// reachable copy wins. Each gateway attempt gets one retry on 429/5xx.
func (c *Client) Fetch(ctx context.Context, uri string) (map[string]interface{}, error) {
	cid := strings.TrimPrefix(uri, "ipfs://")
	var lastErr error
	for _, gw := range c.gateways {
		status, body, err := webclient.DoWithRetry(ctx, 2, 2*time.Second, func() (int, []byte, error) {
			req, err := http.NewRequestWithContext(ctx, "GET", gw+cid, nil)
			if err != nil {
				return 0, nil, err
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return 0, nil, err
			}
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			return resp.StatusCode, b, err
		})
		if err != nil || status != http.StatusOK {
			if err == nil {
				err = fmt.Errorf("gateway %s: status %d", gw, status)
			}
			lastErr = err
			continue
		}
		var out map[string]interface{}
		if err := json.Unmarshal(body, &out); err != nil {
			lastErr = fmt.Errorf("gateway %s: %w", gw, err)
			continue
		}
		return out, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no gateways configured")
	}
	return nil, fmt.Errorf("fetch %s: %w", uri, lastErr)
}
