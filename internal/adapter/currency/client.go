package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jarvis/internal/domain"
)

// DefaultBaseURL is the currencylayer API root
const DefaultBaseURL = "http://api.currencylayer.com"

// convertResponse is the subset of the /convert payload the bot reads
type convertResponse struct {
	Success bool     `json:"success"`
	Result  *float64 `json:"result"`
	Info    struct {
		Quote *float64 `json:"quote"`
	} `json:"info"`
	Error *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Client converts amounts through the currencylayer /convert endpoint
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a currency client. An empty apiKey makes every call fail.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Convert converts amount from one currency code to another
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (domain.Conversion, error) {
	if c.apiKey == "" {
		return domain.Conversion{}, fmt.Errorf("currency api key is not set: %w", domain.ErrAdapterUnavailable)
	}

	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)
	params.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	params.Set("access_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/convert?"+params.Encode(), nil)
	if err != nil {
		return domain.Conversion{}, fmt.Errorf("build convert request: %v: %w", err, domain.ErrAdapterUnavailable)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Conversion{}, fmt.Errorf("convert request: %v: %w", err, domain.ErrAdapterUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Conversion{}, fmt.Errorf("convert status %d: %w", resp.StatusCode, domain.ErrAdapterUnavailable)
	}

	var body convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Conversion{}, fmt.Errorf("decode convert response: %v: %w", err, domain.ErrAdapterUnavailable)
	}

	if !body.Success {
		if body.Error != nil {
			return domain.Conversion{}, fmt.Errorf("convert rejected (%d %s): %w", body.Error.Code, body.Error.Info, domain.ErrAdapterUnavailable)
		}
		return domain.Conversion{}, fmt.Errorf("convert rejected: %w", domain.ErrAdapterUnavailable)
	}
	if body.Result == nil || body.Info.Quote == nil {
		return domain.Conversion{}, fmt.Errorf("convert response incomplete: %w", domain.ErrAdapterUnavailable)
	}

	return domain.Conversion{Result: *body.Result, Rate: *body.Info.Quote}, nil
}
