package frame

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const DefaultHubValidateURL = "https://hubs.airstack.xyz/v1/validateMessage"

// Validator checks the signed envelope of a frame action. Its verdict is
// only logged; steps never wait for it.
type Validator interface {
	Validate(ctx context.Context, payload Payload) (bool, error)
}

// HubValidator asks a farcaster hub to validate the message bytes of a
// frame action.
type HubValidator struct {
	Endpoint string
	APIKey   string
	client   *http.Client
}

func NewHubValidator(endpoint, apiKey string, client *http.Client) *HubValidator {
	if endpoint == "" {
		endpoint = DefaultHubValidateURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HubValidator{Endpoint: endpoint, APIKey: apiKey, client: client}
}

type validateMessageResponse struct {
	Valid   bool            `json:"valid"`
	Message json.RawMessage `json:"message"`
}

func (h *HubValidator) Validate(ctx context.Context, payload Payload) (bool, error) {
	if payload.TrustedData == nil || strings.TrimSpace(payload.TrustedData.MessageBytes) == "" {
		return false, errors.New("invalid or empty messageBytes")
	}
	raw := strings.TrimSpace(payload.TrustedData.MessageBytes)
	if !strings.HasPrefix(raw, "0x") {
		raw = "0x" + raw
	}
	message, err := hexutil.Decode(raw)
	if err != nil {
		return false, fmt.Errorf("decoding messageBytes: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(message))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("x-airstack-hubs", h.APIKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("hub answered %d: %s", resp.StatusCode, string(body))
	}

	result := validateMessageResponse{}
	if err = json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("couldn't unmarshal %s to validate response, err: %w", string(body), err)
	}
	return result.Valid, nil
}
