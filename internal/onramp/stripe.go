package onramp

import (
	"context"
	"fmt"
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

const stripeSessionPath = "/v1/crypto/onramp_sessions"

// StripeSessionRequest is the inbound request body for the Stripe variant.
type StripeSessionRequest struct {
	WalletAddress       string `json:"walletAddress"`
	DestinationCurrency string `json:"destinationCurrency"`
	DestinationNetwork  string `json:"destinationNetwork"`
	SourceAmount        string `json:"sourceAmount"`
}

// StripeSessionResponse maps the upstream client_secret/id pair onto the
// shape the front end consumes.
type StripeSessionResponse struct {
	ClientSecret string `json:"clientSecret"`
	SessionID    string `json:"sessionId"`
}

// StripeService creates Stripe crypto onramp sessions. Caller identity is
// enforced by the auth middleware before this service runs.
type StripeService struct {
	cfg     config.StripeConfig
	client  *httputil.UpstreamClient
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewStripeService creates the service. Metrics may be nil.
func NewStripeService(cfg config.StripeConfig, logger *logging.Logger, m *metrics.Metrics) *StripeService {
	return &StripeService{
		cfg:     cfg,
		client:  httputil.NewUpstreamClient(httputil.UpstreamClientConfig{BaseURL: cfg.BaseURL}),
		logger:  logger,
		metrics: m,
	}
}

// IssueSessionToken validates the request and creates an onramp session
// upstream. Validation precedes the upstream call; a failure at any step
// terminates the invocation with no retries.
func (s *StripeService) IssueSessionToken(ctx context.Context, req StripeSessionRequest) (*StripeSessionResponse, error) {
	if strings.TrimSpace(req.WalletAddress) == "" {
		return nil, errors.InvalidInput("wallet address is required")
	}

	if s.cfg.SecretKey == "" {
		return nil, errors.Configuration("Server configuration error")
	}

	network := req.DestinationNetwork
	if network == "" {
		network = "ethereum"
	}

	form := url.Values{}
	form.Set(fmt.Sprintf("wallet_addresses[%s]", network), req.WalletAddress)
	if req.DestinationCurrency != "" {
		form.Set("destination_currency", req.DestinationCurrency)
	}
	form.Set("destination_network", network)
	if req.SourceAmount != "" {
		form.Set("source_amount", req.SourceAmount)
	}

	start := time.Now()
	resp, err := s.client.PostForm(ctx, stripeSessionPath, form, map[string]string{
		"Authorization": "Bearer " + s.cfg.SecretKey,
	})
	if err != nil {
		return nil, errors.Upstream("onramp provider unavailable", http.StatusBadGateway, err)
	}
	defer resp.Body.Close()
	s.recordUpstream("stripe", time.Since(start))

	body, _, err := httputil.ReadAllWithLimit(resp.Body, 64<<10)
	if err != nil {
		return nil, errors.Upstream("onramp provider unavailable", http.StatusBadGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"body":   strings.TrimSpace(string(body)),
		}).Warn("stripe session request rejected")
		// Upstream error detail is partially forwarded to aid debugging.
		return nil, errors.Upstream("stripe session request failed", resp.StatusCode, nil).
			WithDetails("upstream", strings.TrimSpace(string(body)))
	}

	result := gjson.ParseBytes(body)
	clientSecret := result.Get("client_secret").String()
	sessionID := result.Get("id").String()
	if clientSecret == "" || sessionID == "" {
		return nil, errors.Upstream("stripe session response missing fields", http.StatusBadGateway, nil)
	}

	return &StripeSessionResponse{ClientSecret: clientSecret, SessionID: sessionID}, nil
}

func (s *StripeService) recordUpstream(provider string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordUpstreamDuration(provider, d)
	}
}
