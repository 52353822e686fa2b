package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/vertexpay/onramp-gateway/internal/errlog"
	"github.com/vertexpay/onramp-gateway/internal/errors"
	"github.com/vertexpay/onramp-gateway/internal/httputil"
	"github.com/vertexpay/onramp-gateway/internal/logging"
)

// RecoveryMiddleware converts handler panics into error records through the
// capture pipeline and a 500 response. The pipeline is injected so panic
// diagnostics share the same tiered persistence as client error reports.
func RecoveryMiddleware(pipeline *errlog.Pipeline, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				logger.WithContext(r.Context()).WithFields(map[string]interface{}{
					"panic": rec,
					"path":  r.URL.Path,
				}).Error("handler panic recovered")

				pipeline.Persist(r.Context(), errlog.Record{
					Kind:    errlog.KindError,
					Message: fmt.Sprintf("panic: %v", rec),
					Stack:   string(debug.Stack()),
					PageURL: r.URL.Path,
				})

				httputil.WriteServiceError(w, r, errors.Internal("internal server error", nil))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
