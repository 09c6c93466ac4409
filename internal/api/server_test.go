package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prooflens/prooflens/internal/core"
	"github.com/prooflens/prooflens/internal/testutil"
	"github.com/prooflens/prooflens/internal/verify"
	"github.com/prooflens/prooflens/internal/vision"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	pipeline := verify.NewPipeline(verify.Config{
		Analyzer:  testutil.TestAnalyzer(),
		Extractor: vision.NewExtractor(vision.Config{FillerLabels: false, Seed: 1}),
	})

	return New(Config{
		Port:     0,
		Pipeline: pipeline,
		DB:       testutil.TestDB(t),
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func cleanDeskRequest(t *testing.T) createVerificationRequest {
	t.Helper()
	imageData := testutil.PNGBytes(t, testutil.UniformImage(150, 150, color.RGBA{235, 235, 235, 255}))
	return createVerificationRequest{
		Title:       "Clean my desk",
		Category:    "home",
		Priority:    "medium",
		ImageBase64: base64.StdEncoding.EncodeToString(imageData),
	}
}

// =============================================================================
// Verification Endpoint Tests
// =============================================================================

func TestCreateVerification(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/verifications", cleanDeskRequest(t))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var v core.Verification
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if v.ID == "" {
		t.Error("ID is empty")
	}
	if v.Status != core.StatusVerified {
		t.Errorf("Status = %v, want verified for clean surface photo", v.Status)
	}
	if v.Feedback == "" {
		t.Error("Feedback is empty")
	}
}

func TestCreateVerification_PersistsRecord(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/verifications", cleanDeskRequest(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var created core.Verification
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/verifications/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var fetched core.Verification
	json.Unmarshal(rec.Body.Bytes(), &fetched)
	if fetched.Task.Title != "Clean my desk" {
		t.Errorf("Task.Title = %q, want task snapshot preserved", fetched.Task.Title)
	}
}

func TestCreateVerification_BadImageFailsClosed(t *testing.T) {
	s := testServer(t)

	req := cleanDeskRequest(t)
	req.ImageBase64 = base64.StdEncoding.EncodeToString([]byte("not an image"))

	rec := doJSON(t, s, http.MethodPost, "/api/v1/verifications", req)

	// an unreadable image is a stored, failed-closed verification, not a 4xx
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var v core.Verification
	json.Unmarshal(rec.Body.Bytes(), &v)
	if v.Status != core.StatusImageFailed {
		t.Errorf("Status = %v, want image_failed", v.Status)
	}
	if v.Completed {
		t.Error("Completed = true, want false")
	}
}

func TestCreateVerification_Validation(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name   string
		mutate func(*createVerificationRequest)
	}{
		{"missing title", func(r *createVerificationRequest) { r.Title = "" }},
		{"bad category", func(r *createVerificationRequest) { r.Category = "bogus" }},
		{"bad priority", func(r *createVerificationRequest) { r.Priority = "urgent" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := cleanDeskRequest(t)
			tt.mutate(&req)

			rec := doJSON(t, s, http.MethodPost, "/api/v1/verifications", req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateVerification_InvalidJSON(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verifications", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListVerifications(t *testing.T) {
	s := testServer(t)

	for i := 0; i < 2; i++ {
		if rec := doJSON(t, s, http.MethodPost, "/api/v1/verifications", cleanDeskRequest(t)); rec.Code != http.StatusCreated {
			t.Fatalf("setup create failed: %d", rec.Code)
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/v1/verifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var list []core.Verification
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len(list) = %d, want 2", len(list))
	}
}

func TestListVerifications_EmptyIsArray(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/verifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body[0] != '[' {
		t.Errorf("body = %q, want a JSON array even when empty", body)
	}
}

func TestGetVerification_NotFound(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/verifications/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteVerification(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/verifications", cleanDeskRequest(t))
	var created core.Verification
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doJSON(t, s, http.MethodDelete, "/api/v1/verifications/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/v1/verifications/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rec.Code)
	}
}

// =============================================================================
// Stats and Health Tests
// =============================================================================

func TestGetStats(t *testing.T) {
	s := testServer(t)

	doJSON(t, s, http.MethodPost, "/api/v1/verifications", cleanDeskRequest(t))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats["total"].(float64) != 1 {
		t.Errorf("total = %v, want 1", stats["total"])
	}
}

func TestHealthz(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
