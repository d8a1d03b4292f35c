package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	advisordomain "github.com/joseikin-rescue/server/internal/advisor/domain"
)

// HTTPClient talks to the hosted completion endpoint. The provider is
// stateless from our side: question in, answer out.
type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type completionRequest struct {
	Question string `json:"question"`
}

type completionResponse struct {
	Answer string `json:"answer"`
}

var ErrProviderUnavailable = errors.New("advisor_provider_unavailable")

func (c *HTTPClient) Complete(ctx context.Context, question string) (string, error) {
	if c.endpoint == "" {
		return "", ErrProviderUnavailable
	}

	body, err := json.Marshal(completionRequest{Question: question})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", ErrProviderUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrProviderUnavailable
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", ErrProviderUnavailable
	}
	if strings.TrimSpace(out.Answer) == "" {
		return "", ErrProviderUnavailable
	}
	return out.Answer, nil
}

var _ advisordomain.Client = (*HTTPClient)(nil)
