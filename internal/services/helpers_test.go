package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-engine/internal/extraction"
	"alfredoptarigan/cv-engine/internal/llm"
	"alfredoptarigan/cv-engine/internal/skills"
)

const modelReply = `{
  "overall_score": 78,
  "skills_score": 38,
  "experience_score": 24,
  "education_score": 16,
  "skills_found": ["Python", "SQL"],
  "years_experience": 6,
  "education_level": "Bachelor's",
  "detailed_analysis": "Solid data background.",
  "recommendations": ["Add cloud experience"],
  "market_insights": "Strong demand for analysts."
}`

type stubBackend struct {
	mu      sync.Mutex
	reply   string
	err     error
	models  []string
	listErr error
	pullErr error
	calls   int
}

func (s *stubBackend) Chat(context.Context, llm.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func (s *stubBackend) ListModels(context.Context) ([]string, error) {
	return s.models, s.listErr
}

func (s *stubBackend) PullModel(context.Context, string) error {
	return s.pullErr
}

func (s *stubBackend) chatCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestCVService(t *testing.T, backend llm.Backend) CVEvaluationService {
	t.Helper()
	db, err := skills.Default()
	require.NoError(t, err)

	return NewCVEvaluationService(
		extraction.NewExtractorFactory(nil),
		extraction.NewTextCleaner(),
		skills.NewExtractor(db, nil),
		llm.NewEvaluator(backend, llm.DefaultOptions(), nil),
		nil,
	)
}

// newFileHeader builds a multipart header the way Fiber hands one to a handler.
func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	t.Cleanup(func() { req.MultipartForm.RemoveAll() })

	headers := req.MultipartForm.File["file"]
	require.Len(t, headers, 1)
	return headers[0]
}
