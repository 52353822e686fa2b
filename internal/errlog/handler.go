package errlog

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/vertexpay/onramp-gateway/internal/httputil"
	"github.com/vertexpay/onramp-gateway/internal/logging"
)

const maxIngestBodyBytes = 256 << 10 // 256 KiB

// ingestBatch is the batch form of the ingest payload.
type ingestBatch struct {
	Records []Record `json:"records"`
}

// IngestHandler accepts client error reports (a single record or a
// {"records": [...]} batch) and persists them through the pipeline. The
// response is 202 regardless of persistence outcome: logging must never
// visibly fail. Only an unreadable body yields 400.
func IngestHandler(pipeline *Pipeline, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := httputil.ReadAllStrict(r.Body, maxIngestBodyBytes)
		if err != nil || len(body) == 0 {
			httputil.WriteErrorResponse(w, r, http.StatusBadRequest, "CLIENT_INPUT_ERROR", "unreadable request body", nil)
			return
		}

		records := parseIngestBody(body)
		if len(records) == 0 {
			httputil.WriteErrorResponse(w, r, http.StatusBadRequest, "CLIENT_INPUT_ERROR", "no records in request body", nil)
			return
		}

		agent := r.Header.Get("User-Agent")
		page := r.Header.Get("Referer")
		for _, rec := range records {
			if rec.ClientAgent == "" {
				rec.ClientAgent = agent
			}
			if rec.PageURL == "" {
				rec.PageURL = page
			}
			pipeline.Persist(r.Context(), rec)
		}

		logger.WithContext(r.Context()).WithField("count", len(records)).Debug("client error records ingested")
		httputil.WriteJSON(w, http.StatusAccepted, map[string]interface{}{"accepted": len(records)})
	}
}

// parseIngestBody accepts either a batch envelope or a bare record. Any JSON
// object is a valid record: reports carrying only diagnostic fields get
// their message and kind filled in by normalization.
func parseIngestBody(body []byte) []Record {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var batch ingestBatch
	if err := json.Unmarshal(trimmed, &batch); err == nil && batch.Records != nil {
		return batch.Records
	}
	var single Record
	if err := json.Unmarshal(trimmed, &single); err == nil {
		return []Record{single}
	}
	return nil
}

// RecentHandler returns the most recent captured records for the admin
// diagnostics view.
func RecentHandler(pipeline *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := pipeline.Recent(r.Context())
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"records": records,
			"count":   len(records),
		})
	}
}
