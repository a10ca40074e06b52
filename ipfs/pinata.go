// Package ipfs publishes snapshot trees to IPFS.
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

	"github.com/dev3-labs/assetsnap/common"
	"github.com/ethereum/go-ethereum/log"
)

// ErrPinFailed is returned when a document could not be pinned.
const ErrPinFailed = common.ConstError("failed to pin document")

// DefaultPinataURL is the API endpoint of the Pinata pinning service.
const DefaultPinataURL = "https://api.pinata.cloud"

// PinataConfig configures the access to Pinata. Either the API key and
// secret or the JWT are required.
type PinataConfig struct {
	URL       string
	APIKey    string
	APISecret string
	JWT       string
	Timeout   time.Duration
}

// PinataPinner pins JSON documents using the Pinata API.
type PinataPinner struct {
	config PinataConfig
	client *http.Client
	log    log.Logger
}

func NewPinataPinner(config PinataConfig) *PinataPinner {
	if config.URL == "" {
		config.URL = DefaultPinataURL
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &PinataPinner{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		log:    log.New("module", "pinata"),
	}
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (p *PinataPinner) PinJSON(ctx context.Context, document []byte) (string, error) {
	url := strings.TrimSuffix(p.config.URL, "/") + "/pinning/pinJSONToIPFS"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(document))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.config.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+p.config.JWT)
	} else {
		req.Header.Set("pinata_api_key", p.config.APIKey)
		req.Header.Set("pinata_secret_api_key", p.config.APISecret)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w; %w", ErrPinFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w; %w", ErrPinFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrPinFailed, resp.StatusCode, body)
	}

	var res pinResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("%w: invalid response; %w", ErrPinFailed, err)
	}
	if res.IpfsHash == "" {
		return "", fmt.Errorf("%w: missing IpfsHash in response", ErrPinFailed)
	}
	p.log.Debug("Pinned document", "hash", res.IpfsHash, "size", res.PinSize)
	return res.IpfsHash, nil
}
