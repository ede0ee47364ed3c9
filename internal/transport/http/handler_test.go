package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tliang07/askflow/internal/domain"
)

// fakeService stubs the application layer behind the handlers.
type fakeService struct {
	askResult *domain.AskResult
	askErr    error
	askUserID string
	askMsg    string

	ingestResult *domain.IngestResult
	ingestErr    error
	ingested     []string

	run     *domain.Run
	runs    []domain.Run
	listErr error
}

func (f *fakeService) Ask(ctx context.Context, userID, message string) (*domain.AskResult, error) {
	f.askUserID = userID
	f.askMsg = message
	return f.askResult, f.askErr
}

func (f *fakeService) IngestPDF(ctx context.Context, userID, filePath, filename string) (*domain.IngestResult, error) {
	f.ingested = append(f.ingested, filename)
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	res := *f.ingestResult
	res.Filename = filename
	return &res, nil
}

func (f *fakeService) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	return f.run, nil
}

func (f *fakeService) ListRuns(ctx context.Context, userID string, limit int) ([]domain.Run, error) {
	return f.runs, f.listErr
}

func (f *fakeService) Health() map[string]any {
	return map[string]any{"status": "ok"}
}

func newTestHandler(t *testing.T, svc *fakeService) (*Handler, *echo.Echo) {
	t.Helper()
	h := NewHandler(svc, t.TempDir(), 1024*1024)
	return h, echo.New()
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAsk(t *testing.T) {
	svc := &fakeService{askResult: &domain.AskResult{
		Reply:      "4",
		AgentPath:  []string{"intent", "tool", "final", "safety"},
		Confidence: 0.9,
		RunID:      "run-1",
	}}
	h, e := newTestHandler(t, svc)

	c, rec := postJSON(e, "/ask", `{"message":"what is 2+2?","user_id":"u1"}`)
	require.NoError(t, h.Ask(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.askUserID)
	assert.Equal(t, "what is 2+2?", svc.askMsg)

	var out domain.AskResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "4", out.Reply)
	assert.Equal(t, []string{"intent", "tool", "final", "safety"}, out.AgentPath)
}

func TestAskValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message":""}`},
		{"missing message", `{}`},
		{"oversized message", fmt.Sprintf(`{"message":%q}`, strings.Repeat("x", maxMessageLen+1))},
		{"oversized user_id", fmt.Sprintf(`{"message":"hi","user_id":%q}`, strings.Repeat("u", maxUserIDLen+1))},
		{"malformed body", `{"message":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, e := newTestHandler(t, &fakeService{})
			c, rec := postJSON(e, "/ask", tt.body)
			require.NoError(t, h.Ask(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAskLimitsCountCharacters(t *testing.T) {
	// Multibyte text is bounded by character count, not byte length: a
	// message of exactly maxMessageLen CJK characters is ~3x that many
	// bytes and must still be accepted.
	svc := &fakeService{askResult: &domain.AskResult{Reply: "ok"}}
	h, e := newTestHandler(t, svc)

	msg := strings.Repeat("語", maxMessageLen)
	c, rec := postJSON(e, "/ask", fmt.Sprintf(`{"message":%q}`, msg))
	require.NoError(t, h.Ask(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = postJSON(e, "/ask", fmt.Sprintf(`{"message":%q}`, msg+"語"))
	require.NoError(t, h.Ask(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = postJSON(e, "/ask", fmt.Sprintf(`{"message":"hi","user_id":%q}`, strings.Repeat("語", maxUserIDLen)))
	require.NoError(t, h.Ask(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAskDefaultUserID(t *testing.T) {
	svc := &fakeService{askResult: &domain.AskResult{Reply: "hi"}}
	h, e := newTestHandler(t, svc)

	c, rec := postJSON(e, "/ask", `{"message":"hello"}`)
	require.NoError(t, h.Ask(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultUserID, svc.askUserID)
}

func TestAskServiceError(t *testing.T) {
	svc := &fakeService{askErr: errors.New("ollama unreachable")}
	h, e := newTestHandler(t, svc)

	c, rec := postJSON(e, "/ask", `{"message":"hello"}`)
	require.NoError(t, h.Ask(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func multipartUpload(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func uploadContext(e *echo.Echo, path string, body *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestUploadFile(t *testing.T) {
	svc := &fakeService{ingestResult: &domain.IngestResult{OK: true, FileID: "f1", Chunks: 3}}
	h, e := newTestHandler(t, svc)

	body, ct := multipartUpload(t, "file", map[string][]byte{"report.pdf": []byte("%PDF-1.4 fake")})
	c, rec := uploadContext(e, "/files/upload", body, ct)
	require.NoError(t, h.UploadFile(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var out domain.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.OK)
	assert.Equal(t, "report.pdf", out.Filename)
	assert.Equal(t, 3, out.Chunks)
}

func TestUploadFileRejectsNonPDF(t *testing.T) {
	h, e := newTestHandler(t, &fakeService{})

	body, ct := multipartUpload(t, "file", map[string][]byte{"notes.txt": []byte("hello")})
	c, rec := uploadContext(e, "/files/upload", body, ct)
	require.NoError(t, h.UploadFile(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only PDF is supported")
}

func TestUploadFileMissing(t *testing.T) {
	h, e := newTestHandler(t, &fakeService{})

	body, ct := multipartUpload(t, "other", map[string][]byte{"report.pdf": []byte("x")})
	c, rec := uploadContext(e, "/files/upload", body, ct)
	require.NoError(t, h.UploadFile(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadFileTooLarge(t *testing.T) {
	svc := &fakeService{ingestResult: &domain.IngestResult{OK: true}}
	h := NewHandler(svc, t.TempDir(), 10)
	e := echo.New()

	body, ct := multipartUpload(t, "file", map[string][]byte{"big.pdf": bytes.Repeat([]byte("x"), 100)})
	c, rec := uploadContext(e, "/files/upload", body, ct)
	require.NoError(t, h.UploadFile(c))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadMultiplePartialSuccess(t *testing.T) {
	svc := &fakeService{ingestResult: &domain.IngestResult{OK: true, Chunks: 1}}
	h, e := newTestHandler(t, svc)

	body, ct := multipartUpload(t, "files", map[string][]byte{
		"a.pdf":     []byte("%PDF a"),
		"b.pdf":     []byte("%PDF b"),
		"notes.txt": []byte("not a pdf"),
	})
	c, rec := uploadContext(e, "/files/upload-multiple", body, ct)
	require.NoError(t, h.UploadMultiple(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var out UploadMultipleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.OK)
	assert.Len(t, out.Items, 2)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "notes.txt", out.Errors[0].Filename)
	assert.Contains(t, out.Errors[0].Error, "only PDF is supported")
}

func TestUploadMultipleEmpty(t *testing.T) {
	h, e := newTestHandler(t, &fakeService{})

	body, ct := multipartUpload(t, "files", map[string][]byte{})
	c, rec := uploadContext(e, "/files/upload-multiple", body, ct)
	require.NoError(t, h.UploadMultiple(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRun(t *testing.T) {
	run := &domain.Run{RunID: "run-1", UserID: "u1", Status: domain.RunStatusCompleted}
	h, e := newTestHandler(t, &fakeService{run: run})

	req := httptest.NewRequest(http.MethodGet, "/runs/run-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("run_id")
	c.SetParamValues("run-1")

	require.NoError(t, h.GetRun(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "run-1")
}

func TestGetRunNotFound(t *testing.T) {
	h, e := newTestHandler(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/runs/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("run_id")
	c.SetParamValues("nope")

	require.NoError(t, h.GetRun(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRuns(t *testing.T) {
	h, e := newTestHandler(t, &fakeService{runs: []domain.Run{{RunID: "run-1"}}})

	req := httptest.NewRequest(http.MethodGet, "/runs?user_id=u1&limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ListRuns(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out map[string][]domain.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out["items"], 1)
}

func TestHealth(t *testing.T) {
	h, e := newTestHandler(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
