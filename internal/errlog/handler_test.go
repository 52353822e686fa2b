package errlog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIngestHandler_SingleRecord(t *testing.T) {
	p := NewPipeline(testLogger())
	p.Install()
	handler := IngestHandler(p, testLogger())

	body := `{"kind":"error","message":"ReferenceError: foo is not defined","sourceFile":"app.js","line":42}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/client-logs", strings.NewReader(body))
	req.Header.Set("User-Agent", "Mozilla/5.0 (test)")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	got := p.MemorySnapshot()
	if len(got) != 1 {
		t.Fatalf("persisted %d records, want 1", len(got))
	}
	if got[0].ClientAgent != "Mozilla/5.0 (test)" {
		t.Errorf("ClientAgent = %q, want request User-Agent", got[0].ClientAgent)
	}
	if got[0].Line != 42 {
		t.Errorf("Line = %d, want 42", got[0].Line)
	}
}

func TestIngestHandler_Batch(t *testing.T) {
	p := NewPipeline(testLogger())
	p.Install()
	handler := IngestHandler(p, testLogger())

	body := `{"records":[{"kind":"error","message":"a"},{"kind":"unhandled-rejection","message":"b"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/client-logs", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if got := p.MemorySnapshot(); len(got) != 2 {
		t.Fatalf("persisted %d records, want 2", len(got))
	}
}

func TestIngestHandler_DiagnosticOnlyRecord(t *testing.T) {
	p := NewPipeline(testLogger())
	p.Install()
	handler := IngestHandler(p, testLogger())

	// No message or kind; normalization fills both in.
	body := `{"stack":"Error: something\n  at boot (app.js:1:1)","sourceFile":"app.js","line":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/client-logs", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	got := p.MemorySnapshot()
	if len(got) != 1 {
		t.Fatalf("persisted %d records, want 1", len(got))
	}
	if got[0].Message != "Unknown error" {
		t.Errorf("Message = %q, want %q", got[0].Message, "Unknown error")
	}
	if got[0].Kind != KindError {
		t.Errorf("Kind = %q, want %q", got[0].Kind, KindError)
	}
	if got[0].SourceFile != "app.js" || got[0].Line != 1 {
		t.Errorf("diagnostic fields not preserved: %+v", got[0])
	}
}

func TestIngestHandler_NonObjectBody(t *testing.T) {
	p := NewPipeline(testLogger())
	p.Install()
	handler := IngestHandler(p, testLogger())

	for _, body := range []string{`"just a string"`, `42`, `[1,2,3]`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/client-logs", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestIngestHandler_UnreadableBody(t *testing.T) {
	p := NewPipeline(testLogger())
	p.Install()
	handler := IngestHandler(p, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/client-logs", strings.NewReader(""))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestIngestHandler_NeverFailsOnStorageErrors(t *testing.T) {
	p := NewPipeline(testLogger(), WithBackends(&failingBackend{}))
	p.Install()
	handler := IngestHandler(p, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/client-logs", strings.NewReader(`{"kind":"error","message":"x"}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d despite storage failure", rec.Code, http.StatusAccepted)
	}
}

func TestRecentHandler_ReturnsRecords(t *testing.T) {
	p := NewPipeline(testLogger())
	p.Install()
	p.Persist(httptest.NewRequest(http.MethodGet, "/", nil).Context(), Record{Kind: KindError, Message: "x"})

	handler := RecentHandler(p)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/client-logs/recent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("body = %s, want count 1", rec.Body.String())
	}
}
