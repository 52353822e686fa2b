package onramp

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vertexpay/onramp-gateway/internal/config"
	"github.com/vertexpay/onramp-gateway/internal/errors"
	"github.com/vertexpay/onramp-gateway/internal/httputil"
	"github.com/vertexpay/onramp-gateway/internal/logging"
	"github.com/vertexpay/onramp-gateway/internal/metrics"
)

const coinbaseTokenPath = "/onramp/v1/token"

// CoinbaseAddress pairs a destination wallet address with the blockchains it
// accepts funds on.
type CoinbaseAddress struct {
	Address     string   `json:"address"`
	Blockchains []string `json:"blockchains"`
}

// CoinbaseSessionRequest is the inbound request body for the Coinbase
// variant.
type CoinbaseSessionRequest struct {
	Addresses []CoinbaseAddress `json:"addresses"`
	Assets    []string          `json:"assets,omitempty"`
}

// CoinbaseSessionResponse is the minimal pair returned to the client; the
// full upstream payload is never forwarded.
type CoinbaseSessionResponse struct {
	Token     string `json:"token"`
	ChannelID string `json:"channel_id"`
}

// CoinbaseService mints signed assertions and exchanges them for Coinbase
// onramp session tokens. Invocations are independent: each call loads
// credentials, signs, and calls upstream with no shared state.
type CoinbaseService struct {
	cfg     config.CoinbaseConfig
	client  *httputil.UpstreamClient
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewCoinbaseService creates the service. Metrics may be nil.
func NewCoinbaseService(cfg config.CoinbaseConfig, logger *logging.Logger, m *metrics.Metrics) *CoinbaseService {
	return &CoinbaseService{
		cfg:     cfg,
		client:  httputil.NewUpstreamClient(httputil.UpstreamClientConfig{BaseURL: cfg.BaseURL}),
		logger:  logger,
		metrics: m,
	}
}

// IssueSessionToken validates the request, signs a one-call assertion, and
// exchanges it upstream. Validation runs before any signing so a bad request
// never wastes a signing operation.
func (s *CoinbaseService) IssueSessionToken(ctx context.Context, req CoinbaseSessionRequest) (*CoinbaseSessionResponse, error) {
	if len(req.Addresses) == 0 {
		return nil, errors.InvalidInput("wallet address is required")
	}
	for _, addr := range req.Addresses {
		if strings.TrimSpace(addr.Address) == "" {
			return nil, errors.InvalidInput("wallet address is required")
		}
	}

	if s.cfg.APIKey == "" || s.cfg.APISecret == "" {
		return nil, errors.Configuration("Server configuration error")
	}

	host, err := upstreamHost(s.client.BaseURL())
	if err != nil {
		return nil, errors.Configuration("Server configuration error")
	}

	assertion, err := BuildAssertion(SigningRequest{
		KeyID:     s.cfg.APIKey,
		KeySecret: s.cfg.APISecret,
		Method:    http.MethodPost,
		Host:      host,
		Path:      coinbaseTokenPath,
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("key_fingerprint", SecretFingerprint(s.cfg.APISecret)).Error("assertion signing failed")
		return nil, errors.Configuration("Server configuration error")
	}

	start := time.Now()
	resp, err := s.client.PostJSON(ctx, coinbaseTokenPath, req, map[string]string{
		"Authorization": "Bearer " + assertion,
	})
	if err != nil {
		return nil, errors.Upstream("onramp provider unavailable", http.StatusBadGateway, err)
	}
	defer resp.Body.Close()
	s.recordUpstream("coinbase", time.Since(start))

	body, _, err := httputil.ReadAllWithLimit(resp.Body, 64<<10)
	if err != nil {
		return nil, errors.Upstream("onramp provider unavailable", http.StatusBadGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"body":   strings.TrimSpace(string(body)),
		}).Warn("coinbase session request rejected")
		return nil, errors.Upstream("coinbase session request failed", resp.StatusCode, nil).
			WithDetails("upstream", strings.TrimSpace(string(body)))
	}

	result := gjson.ParseBytes(body)
	token := result.Get("token").String()
	channel := result.Get("channel_id").String()
	if channel == "" {
		channel = result.Get("channelId").String()
	}
	if token == "" {
		return nil, errors.Upstream("coinbase session response missing token", http.StatusBadGateway, nil)
	}

	return &CoinbaseSessionResponse{Token: token, ChannelID: channel}, nil
}

func (s *CoinbaseService) recordUpstream(provider string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordUpstreamDuration(provider, d)
	}
}

// upstreamHost extracts the host portion of a base URL for the uri claim.
func upstreamHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	return u.Host, nil
}
