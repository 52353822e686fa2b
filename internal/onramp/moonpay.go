package onramp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"

	"github.com/vertexpay/onramp-gateway/internal/config"
	"github.com/vertexpay/onramp-gateway/internal/errors"
)

// MoonPaySignResponse carries the widget URL signature.
type MoonPaySignResponse struct {
	Signature string `json:"signature"`
	SignedURL string `json:"signedUrl"`
}

// MoonPayService signs MoonPay widget URLs with the shared secret so the
// widget accepts the query parameters as server-vouched.
type MoonPayService struct {
	cfg config.MoonPayConfig
}

// NewMoonPayService creates the service.
func NewMoonPayService(cfg config.MoonPayConfig) *MoonPayService {
	return &MoonPayService{cfg: cfg}
}

// SignWidgetURL computes the HMAC-SHA256 signature of the URL's query string
// and returns it alongside the URL with the signature appended.
func (s *MoonPayService) SignWidgetURL(rawURL string) (*MoonPaySignResponse, error) {
	if s.cfg.SecretKey == "" {
		return nil, errors.Configuration("Server configuration error")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.InvalidInput("invalid widget URL")
	}
	if parsed.RawQuery == "" {
		return nil, errors.InvalidFormat("widget URL", "must carry a query string to sign")
	}

	mac := hmac.New(sha256.New, []byte(s.cfg.SecretKey))
	mac.Write([]byte("?" + parsed.RawQuery))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return &MoonPaySignResponse{
		Signature: signature,
		SignedURL: rawURL + "&signature=" + url.QueryEscape(signature),
	}, nil
}
