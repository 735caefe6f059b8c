package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MaitreJV/pseudoshield/internal/config"
	"github.com/MaitreJV/pseudoshield/internal/logger"
	"github.com/MaitreJV/pseudoshield/internal/pipeline"
	"github.com/MaitreJV/pseudoshield/internal/store"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.GetDefaults()
	log := &logger.Logger{Logger: zap.NewNop()}

	srv, err := New(cfg, store.NewMemoryStore(0), log)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndInfo(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Health returned %d", rec.Code)
	}

	rec = doJSON(t, srv, "GET", "/info", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Info returned %d", rec.Code)
	}
	var info map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Invalid info JSON: %v", err)
	}
	if info["name"] != "pseudoshield" {
		t.Errorf("Unexpected service name: %v", info["name"])
	}
}

func TestHandleProcess(t *testing.T) {
	t.Run("PseudonymizesText", func(t *testing.T) {
		srv := newTestServer(t)
		rec := doJSON(t, srv, "POST", "/v1/process", ProcessRequest{
			Text:          "Cher Maître X, mon IBAN est BE68 5390 0754 7034 et mon email x@y.be",
			SourceContext: "courrier.txt",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("Process returned %d: %s", rec.Code, rec.Body.String())
		}

		var result pipeline.Result
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("Invalid process response: %v", err)
		}
		if result.ReplacementCount < 2 {
			t.Errorf("Expected at least 2 replacements, got %d", result.ReplacementCount)
		}
		if strings.Contains(result.ResultText, "x@y.be") {
			t.Error("Email survived in the response text")
		}
	})

	t.Run("InvalidBody", func(t *testing.T) {
		srv := newTestServer(t)
		req := httptest.NewRequest("POST", "/v1/process", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for invalid body, got %d", rec.Code)
		}
	})

	t.Run("FeedsJournal", func(t *testing.T) {
		srv := newTestServer(t)
		doJSON(t, srv, "POST", "/v1/process", ProcessRequest{
			Text:          "email x@y.be",
			SourceContext: "note.txt",
		})

		rec := doJSON(t, srv, "GET", "/v1/journal", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Journal list returned %d", rec.Code)
		}
		var payload struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("Invalid journal response: %v", err)
		}
		if payload.Count != 1 {
			t.Errorf("Expected 1 journal entry, got %d", payload.Count)
		}
	})
}

func TestHandleReveal(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, "POST", "/v1/process", ProcessRequest{Text: "email x@y.be"})

	t.Run("KnownPseudonym", func(t *testing.T) {
		rec := doJSON(t, srv, "POST", "/v1/pseudonyms/reveal", RevealRequest{Pseudonym: "Email_1"})
		if rec.Code != http.StatusOK {
			t.Fatalf("Reveal returned %d", rec.Code)
		}
		var resp RevealResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if !resp.Revealable || resp.Original != "x@y.be" {
			t.Errorf("Unexpected reveal response: %+v", resp)
		}
	})

	t.Run("UnknownPseudonym", func(t *testing.T) {
		rec := doJSON(t, srv, "POST", "/v1/pseudonyms/reveal", RevealRequest{Pseudonym: "Email_99"})
		var resp RevealResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Revealable {
			t.Error("Unknown pseudonym reported revealable")
		}
	})

	t.Run("EmptyPseudonym", func(t *testing.T) {
		rec := doJSON(t, srv, "POST", "/v1/pseudonyms/reveal", RevealRequest{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for empty pseudonym, got %d", rec.Code)
		}
	})
}

func TestHandleQuotaAndRules(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, "GET", "/v1/quota", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Quota returned %d", rec.Code)
	}

	rec = doJSON(t, srv, "GET", "/v1/rules", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Rules returned %d", rec.Code)
	}
	var payload struct {
		Count int        `json:"count"`
		Rules []ruleInfo `json:"rules"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Invalid rules response: %v", err)
	}
	if payload.Count < 30 {
		t.Errorf("Expected the full rule catalogue, got %d rules", payload.Count)
	}
}

func TestHandlePseudonymReset(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, "POST", "/v1/process", ProcessRequest{Text: "email x@y.be"})

	rec := doJSON(t, srv, "DELETE", "/v1/pseudonyms", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Reset returned %d", rec.Code)
	}

	rec = doJSON(t, srv, "GET", "/v1/pseudonyms/stats", nil)
	var stats struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.Total != 0 {
		t.Errorf("Expected empty table after reset, got %d entries", stats.Total)
	}
}

func TestJournalExportFormats(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, "POST", "/v1/process", ProcessRequest{Text: "email x@y.be", SourceContext: "doc.txt"})

	for _, format := range []string{"json", "csv", "parquet"} {
		rec := doJSON(t, srv, "GET", "/v1/journal/export?format="+format, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("Export %s returned %d", format, rec.Code)
		}
		if rec.Body.Len() == 0 {
			t.Errorf("Export %s produced no output", format)
		}
	}

	rec := doJSON(t, srv, "GET", "/v1/journal/export?format=xml", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unsupported format, got %d", rec.Code)
	}
}
