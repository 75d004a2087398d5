package issuance

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
	"github.com/ethereum/go-ethereum/common"
)

// TokenRequest describes one token deployment.
type TokenRequest struct {
	Name               string `json:"name"`
	Symbol             string `json:"symbol"`
	MetadataURI        string `json:"metadata_uri"`
	PayoutRecipient    string `json:"payout_recipient"`
	PlatformReferrer   string `json:"platform_referrer"`
	InitialPurchaseWei string `json:"initial_purchase_wei"`
}

// TokenResult is a successful deployment.
type TokenResult struct {
	TxHash          string `json:"tx_hash"`
	ContractAddress string `json:"contract_address"`
}

// Client calls the external token-issuance service. Error classification
// happens here, at the collaborator boundary, so callers branch on types
// instead of message text.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: webclient.NewDefault(30 * time.Second),
	}
}

// CreateToken deploys a token contract. Returns *TransientMetadataError when
// the service reports the metadata URI as not yet reachable, and
// *PermanentIssuanceError for every other service-side failure.
func (c *Client) CreateToken(ctx context.Context, req TokenRequest) (*TokenResult, error) {
	if !common.IsHexAddress(req.PayoutRecipient) {
		return nil, &PermanentIssuanceError{Detail: "invalid payout recipient " + req.PayoutRecipient}
	}
	if req.InitialPurchaseWei == "" {
		req.InitialPurchaseWei = "0"
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/tokens/deploy", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var svcErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.Unmarshal(body, &svcErr)
		detail := svcErr.Error
		if detail == "" {
			detail = fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))
		}
		if isMetadataPropagation(svcErr.Code, detail) {
			return nil, &TransientMetadataError{Detail: detail}
		}
		return nil, &PermanentIssuanceError{Detail: detail}
	}

	var result TokenResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if result.ContractAddress == "" {
		return nil, &PermanentIssuanceError{Detail: "service returned no contract address"}
	}
	result.ContractAddress = common.HexToAddress(result.ContractAddress).Hex()
	return &result, nil
}

func isMetadataPropagation(code, detail string) bool {
	if code == "metadata_not_found" || code == "metadata_unreachable" {
		return true
	}
	lower := strings.ToLower(detail)
	return strings.Contains(lower, "metadata") &&
		(strings.Contains(lower, "not found") || strings.Contains(lower, "propagat") ||
			strings.Contains(lower, "unreachable") || strings.Contains(lower, "timed out"))
}

// ViewerURL composes the public explorer page for a deployed token.
func ViewerURL(base, contractAddress, referrer string) string {
	if referrer == "" {
		return fmt.Sprintf("%s/%s", base, contractAddress)
	}
	return fmt.Sprintf("%s/%s?referrer=%s", base, contractAddress, referrer)
}
