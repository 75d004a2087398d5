package farcaster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/castforge/castforge/src/webclient"
	"github.com/ethereum/go-ethereum/common"
)

// Client talks to the social-graph API (a Neynar-compatible surface).
type Client struct {
	baseURL    string
	apiKey     string
	signerUUID string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, signerUUID string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		signerUUID: signerUUID,
		httpClient: webclient.NewDefault(15 * time.Second),
	}
}

type wireUser struct {
	FID               uint64 `json:"fid"`
	Username          string `json:"username"`
	DisplayName       string `json:"display_name"`
	VerifiedAddresses struct {
		EthAddresses []string `json:"eth_addresses"`
	} `json:"verified_addresses"`
}

type wireEmbed struct {
	URL      string `json:"url"`
	Image    string `json:"image"`
	Metadata struct {
		ContentType string `json:"content_type"`
	} `json:"metadata"`
}

type wireCast struct {
	Hash      string      `json:"hash"`
	Author    wireUser    `json:"author"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
	Embeds    []wireEmbed `json:"embeds"`
	Frames    []wireEmbed `json:"embedded_media"`
	ImageURLs []string    `json:"image_urls"`
	Parent    struct {
		Hash string `json:"hash"`
		FID  uint64 `json:"fid"`
	} `json:"parent"`
	MentionedProfiles []wireUser `json:"mentioned_profiles"`
}

func (w *wireCast) toCast() *Cast {
	c := &Cast{
		Hash:            w.Hash,
		Author:          w.Author.toUser(),
		Text:            w.Text,
		Timestamp:       w.Timestamp,
		ParentHash:      w.Parent.Hash,
		ParentAuthorFID: w.Parent.FID,
		ImageURLs:       w.ImageURLs,
	}
	for _, e := range w.Embeds {
		c.Embeds = append(c.Embeds, Embed{URL: e.URL, MIMEType: e.Metadata.ContentType, Image: e.Image})
	}
	for _, e := range w.Frames {
		c.EmbeddedMedia = append(c.EmbeddedMedia, Embed{URL: e.URL, MIMEType: e.Metadata.ContentType, Image: e.Image})
	}
	for _, p := range w.MentionedProfiles {
		c.MentionedFIDs = append(c.MentionedFIDs, p.FID)
	}
	return c
}

func (w wireUser) toUser() User {
	u := User{
		FID:         w.FID,
		Username:    w.Username,
		DisplayName: w.DisplayName,
	}
	for _, addr := range w.VerifiedAddresses.EthAddresses {
		if common.IsHexAddress(addr) {
			u.VerifiedETHAddress = common.HexToAddress(addr).Hex()
			break
		}
	}
	return u
}

// CastByHash fetches one cast. A nil cast with nil error means not found.
func (c *Client) CastByHash(ctx context.Context, hash string) (*Cast, error) {
	endpoint := fmt.Sprintf("%s/v2/farcaster/cast?identifier=%s&type=hash", c.baseURL, url.QueryEscape(hash))
	var result struct {
		Cast *wireCast `json:"cast"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	if result.Cast == nil {
		return nil, nil
	}
	return result.Cast.toCast(), nil
}

// UserByFID fetches one user profile.
func (c *Client) UserByFID(ctx context.Context, fid uint64) (*User, error) {
	endpoint := fmt.Sprintf("%s/v2/farcaster/user/bulk?fids=%d", c.baseURL, fid)
	var result struct {
		Users []wireUser `json:"users"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	if len(result.Users) == 0 {
		return nil, nil
	}
	u := result.Users[0].toUser()
	return &u, nil
}

// SearchUserByUsername returns the first matching user's verified ETH
// address, or empty when none is registered.
func (c *Client) SearchUserByUsername(ctx context.Context, username string) (string, error) {
	endpoint := fmt.Sprintf("%s/v2/farcaster/user/search?q=%s&limit=1", c.baseURL, url.QueryEscape(username))
	var result struct {
		Result struct {
			Users []wireUser `json:"users"`
		} `json:"result"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return "", err
	}
	if len(result.Result.Users) == 0 {
		return "", nil
	}
	return result.Result.Users[0].toUser().VerifiedETHAddress, nil
}

// PublishReply posts a reply cast under parentHash and returns the new cast
// hash. The platform auto-embeds any URLs found in text.
func (c *Client) PublishReply(ctx context.Context, parentHash, text string) (string, error) {
	payload := map[string]interface{}{
		"signer_uuid": c.signerUUID,
		"text":        text,
		"parent":      parentHash,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/farcaster/cast", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("publish reply: status %d: %s", resp.StatusCode, string(body))
	}
	var result struct {
		Cast struct {
			Hash string `json:"hash"`
		} `json:"cast"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	return result.Cast.Hash, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("farcaster API: status %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
