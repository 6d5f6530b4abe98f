package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/darregistry/member-registry/go-api-server/internal/shared/validator"
	"github.com/gin-gonic/gin"
)

// SetupTestRouter returns a bare gin engine in test mode with the custom validators registered
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	_ = validator.RegisterAll()
	return gin.New()
}

// TestRequest describes one request made against a test router.
// Body is marshalled to JSON; RawBody is sent verbatim, e.g. for malformed JSON.
type TestRequest struct {
	Method  string
	URL     string
	Body    interface{}
	RawBody string
	Headers map[string]string
}

// ExecuteRequest serves req on router and returns the recorded response
func ExecuteRequest(t *testing.T, router *gin.Engine, req TestRequest) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch {
	case req.RawBody != "":
		body = bytes.NewBufferString(req.RawBody)
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq := httptest.NewRequest(req.Method, req.URL, body)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httpReq)
	return recorder
}

// ParseResponse decodes the recorded JSON body into v
func ParseResponse(t *testing.T, recorder *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(recorder.Body.Bytes(), v); err != nil {
		t.Fatalf("parse response body %q: %v", recorder.Body.String(), err)
	}
}
