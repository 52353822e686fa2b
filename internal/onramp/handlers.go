package onramp

import (
	"net/http"

	"github.com/vertexpay/onramp-gateway/internal/errors"
	"github.com/vertexpay/onramp-gateway/internal/httputil"
	"github.com/vertexpay/onramp-gateway/internal/logging"
	"github.com/vertexpay/onramp-gateway/internal/metrics"
)

const maxSessionBodyBytes = 64 << 10 // 64 KiB

// CoinbaseSessionHandler handles POST /api/v1/onramp/coinbase/session.
// This variant is server-to-server and performs no caller-identity check.
func CoinbaseSessionHandler(svc *CoinbaseService, logger *logging.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CoinbaseSessionRequest
		if err := httputil.DecodeJSONBody(r, &req, maxSessionBodyBytes); err != nil {
			recordSession(m, "coinbase", "bad_request")
			httputil.WriteServiceError(w, r, errors.InvalidInput("invalid request body"))
			return
		}

		session, err := svc.IssueSessionToken(r.Context(), req)
		if err != nil {
			recordSession(m, "coinbase", "error")
			logger.WithContext(r.Context()).WithError(err).Warn("coinbase session issuance failed")
			httputil.WriteServiceError(w, r, err)
			return
		}

		recordSession(m, "coinbase", "ok")
		httputil.WriteJSON(w, http.StatusOK, session)
	}
}

// StripeSessionHandler handles POST /api/v1/onramp/stripe/session. The route
// is wrapped in bearer authentication; the handler only sees authenticated
// requests.
func StripeSessionHandler(svc *StripeService, logger *logging.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StripeSessionRequest
		if err := httputil.DecodeJSONBody(r, &req, maxSessionBodyBytes); err != nil {
			recordSession(m, "stripe", "bad_request")
			httputil.WriteServiceError(w, r, errors.InvalidInput("invalid request body"))
			return
		}

		session, err := svc.IssueSessionToken(r.Context(), req)
		if err != nil {
			recordSession(m, "stripe", "error")
			logger.WithContext(r.Context()).WithError(err).Warn("stripe session issuance failed")
			httputil.WriteServiceError(w, r, err)
			return
		}

		recordSession(m, "stripe", "ok")
		httputil.WriteJSON(w, http.StatusOK, session)
	}
}

// moonpaySignRequest is the inbound body for the MoonPay signer.
type moonpaySignRequest struct {
	URL string `json:"url"`
}

// MoonPaySignHandler handles POST /api/v1/onramp/moonpay/sign.
func MoonPaySignHandler(svc *MoonPayService, logger *logging.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moonpaySignRequest
		if err := httputil.DecodeJSONBody(r, &req, maxSessionBodyBytes); err != nil || req.URL == "" {
			recordSession(m, "moonpay", "bad_request")
			httputil.WriteServiceError(w, r, errors.InvalidInput("widget url is required"))
			return
		}

		signed, err := svc.SignWidgetURL(req.URL)
		if err != nil {
			recordSession(m, "moonpay", "error")
			logger.WithContext(r.Context()).WithError(err).Warn("moonpay url signing failed")
			httputil.WriteServiceError(w, r, err)
			return
		}

		recordSession(m, "moonpay", "ok")
		httputil.WriteJSON(w, http.StatusOK, signed)
	}
}

func recordSession(m *metrics.Metrics, provider, status string) {
	if m != nil {
		m.RecordOnrampSession(provider, status)
	}
}
