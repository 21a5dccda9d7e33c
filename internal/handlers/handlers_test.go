package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-engine/internal/config"
	"alfredoptarigan/cv-engine/internal/extraction"
	"alfredoptarigan/cv-engine/internal/llm"
	"alfredoptarigan/cv-engine/internal/models"
	"alfredoptarigan/cv-engine/internal/repositories"
	"alfredoptarigan/cv-engine/internal/services"
	"alfredoptarigan/cv-engine/internal/skills"
)

const cvText = `John Smith
john@example.com
Backend engineer, 5 years of Python, Docker and PostgreSQL.
Strong communication.`

const modelReply = `{"overall_score": 70, "skills_score": 35, "experience_score": 20,
"education_score": 15, "skills_found": ["Python"], "years_experience": 5,
"education_level": "Bachelor's", "detailed_analysis": "Good.",
"recommendations": ["Learn Go"], "market_insights": "Steady."}`

type stubBackend struct {
	reply   string
	models  []string
	pullErr error
}

func (s *stubBackend) Chat(context.Context, llm.ChatRequest) (string, error) {
	return s.reply, nil
}

func (s *stubBackend) ListModels(context.Context) ([]string, error) { return s.models, nil }

func (s *stubBackend) PullModel(context.Context, string) error { return s.pullErr }

type testServer struct {
	app     *fiber.App
	uploads repositories.UploadRepository
	jobs    repositories.EvaluationRepository
	tempDir string
}

func newTestServer(t *testing.T, backend *stubBackend) *testServer {
	t.Helper()

	db, err := skills.Default()
	require.NoError(t, err)

	factory := extraction.NewExtractorFactory(nil)
	cv := services.NewCVEvaluationService(
		factory,
		extraction.NewTextCleaner(),
		skills.NewExtractor(db, nil),
		llm.NewEvaluator(backend, llm.DefaultOptions(), nil),
		nil,
	)
	validator := services.NewFileValidator(1, []string{"pdf", "docx", "txt"}, factory)

	uploadDir, tempDir := t.TempDir(), t.TempDir()
	uploadStorage := services.NewStorageService(uploadDir)
	tempStorage := services.NewStorageService(tempDir)

	uploadRepo := repositories.NewMemoryUploadRepository()
	evalRepo := repositories.NewMemoryEvaluationRepository()

	worker := services.NewWorker(
		evalRepo,
		services.NewJobProcessor(evalRepo, uploadRepo, cv, nil),
		services.WorkerOptions{Concurrency: 1, PollInterval: time.Hour},
		nil,
	)
	worker.Start(context.Background())
	t.Cleanup(worker.Stop)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	RegisterRoutes(app, "/api/v1", Handlers{
		Health:     NewHealthHandler(config.ServerConfig{AppName: "CV Engine", Version: "1.2.3", Env: "test"}),
		Upload:     NewUploadHandler(services.NewUploadService(uploadRepo, uploadStorage, validator, nil)),
		Evaluation: NewEvaluationHandler(cv, validator, tempStorage, nil),
		Jobs:       NewJobHandler(uploadRepo, evalRepo, worker),
		Result:     NewResultHandler(evalRepo),
	})

	return &testServer{app: app, uploads: uploadRepo, jobs: evalRepo, tempDir: tempDir}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func multipartRequest(t *testing.T, url, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, url string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestHealthAndRoot(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	health := decode[map[string]any](t, body)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "1.2.3", health["version"])
	assert.Equal(t, "test", health["environment"])

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	root := decode[map[string]any](t, body)
	assert.Equal(t, "running", root["status"])
	assert.Equal(t, "Welcome to CV Engine", root["message"])
}

func TestUploadEndpoints(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	resp, body := s.do(t, multipartRequest(t, "/api/v1/upload", "john.txt", []byte(cvText)))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	created := decode[models.UploadResponse](t, body)
	assert.Equal(t, "john.txt", created.Filename)
	assert.Equal(t, models.UploadPending, created.Status)
	assert.Equal(t, "File uploaded successfully", created.Message)

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/upload/"+created.UploadID, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, body)
	assert.Equal(t, created.UploadID, got["upload_id"])
	assert.NotContains(t, got, "StoredName")

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[models.UploadListResponse](t, body).TotalCount)

	resp, _ = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/upload/"+created.UploadID, nil))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/upload/"+created.UploadID, nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/upload/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/upload/not-a-uuid", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadValidationErrors(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	resp, body := s.do(t, multipartRequest(t, "/api/v1/upload", "cv.exe", []byte("MZ")))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "File type not supported. Allowed: pdf, docx, txt", decode[map[string]any](t, body)["error"])

	resp, _ = s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEvaluateFile(t *testing.T) {
	s := newTestServer(t, &stubBackend{reply: modelReply})

	resp, body := s.do(t, multipartRequest(t, "/api/v1/evaluate-file", "john.txt", []byte(cvText)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	result := decode[models.EvaluationResponse](t, body)
	assert.True(t, result.Success)
	assert.Equal(t, 70, result.Evaluation.OverallScore)
	assert.Equal(t, "john.txt", result.FileInfo.Filename)
	assert.Equal(t, "TXTExtractor", result.FileInfo.ExtractionMetadata.ExtractorType)
	require.NotNil(t, result.Skills)
	assert.Contains(t, result.Skills.AllSkills, "Docker")

	entries, err := os.ReadDir(s.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed")

	resp, _ = s.do(t, multipartRequest(t, "/api/v1/evaluate-file", "john.rtf", []byte(cvText)))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEvaluateText(t *testing.T) {
	s := newTestServer(t, &stubBackend{reply: modelReply})

	resp, body := s.do(t, jsonRequest(t, http.MethodPost, "/api/v1/evaluate-text", fiber.Map{"text": cvText}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode[models.EvaluationResponse](t, body)
	assert.True(t, result.Success)
	assert.Equal(t, "direct_input.txt", result.FileInfo.Filename)
	assert.NotNil(t, result.Skills)

	resp, body = s.do(t, jsonRequest(t, http.MethodPost, "/api/v1/evaluate-text",
		fiber.Map{"text": cvText, "filename": "pasted.txt", "include_skills": false}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result = decode[models.EvaluationResponse](t, body)
	assert.Equal(t, "pasted.txt", result.FileInfo.Filename)
	assert.Nil(t, result.Skills)

	resp, body = s.do(t, jsonRequest(t, http.MethodPost, "/api/v1/evaluate-text", fiber.Map{"text": "  "}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Text content is required", decode[map[string]any](t, body)["error"])
}

func TestExtractSkillsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	resp, body := s.do(t, jsonRequest(t, http.MethodPost, "/api/v1/extract-skills", fiber.Map{"text": cvText}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	found := decode[skills.ExtractedSkills](t, body)
	assert.Contains(t, found.TechnicalSkills, "Python")
	assert.Contains(t, found.SoftSkills, "Communication")
}

func TestModelEndpoints(t *testing.T) {
	s := newTestServer(t, &stubBackend{models: []string{llm.DefaultModel}})

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/model-status", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	status := decode[models.ModelStatus](t, body)
	assert.True(t, status.Available)
	assert.Equal(t, "ready", status.Status)

	resp, body = s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/setup-model", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, llm.DefaultModel, decode[map[string]any](t, body)["model_name"])

	failing := newTestServer(t, &stubBackend{pullErr: errors.New("disk full")})
	resp, _ = failing.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/setup-model", nil))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestSupportedFormats(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/supported-formats", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	formats := decode[models.SupportedFormatsResponse](t, body)
	assert.Equal(t, []string{"pdf", "docx", "txt"}, formats.Formats)
	assert.Equal(t, int64(1), formats.MaxFileSizeMB)
}

func TestAsyncEvaluation(t *testing.T) {
	s := newTestServer(t, &stubBackend{reply: modelReply})

	_, body := s.do(t, multipartRequest(t, "/api/v1/upload", "john.txt", []byte(cvText)))
	upload := decode[models.UploadResponse](t, body)

	resp, body := s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/upload/"+upload.UploadID+"/evaluate", nil))
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode, string(body))
	queued := decode[models.EvaluateResponse](t, body)
	assert.Equal(t, "queued", queued.Status)

	var result models.ResultResponse
	for deadline := time.Now().Add(3 * time.Second); time.Now().Before(deadline); time.Sleep(20 * time.Millisecond) {
		_, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+queued.ID, nil))
		result = decode[models.ResultResponse](t, body)
		if result.Status == string(models.StatusCompleted) {
			break
		}
	}
	require.Equal(t, string(models.StatusCompleted), result.Status)

	assert.Equal(t, upload.UploadID, result.UploadID)
	require.NotNil(t, result.Result)
	assert.Equal(t, 70, result.Result.Evaluation.OverallScore)
	assert.Nil(t, result.ErrorMessage)

	id, err := uuid.Parse(upload.UploadID)
	require.NoError(t, err)
	stored, err := s.uploads.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, models.UploadCompleted, stored.Status)
}

func TestAsyncEvaluationErrors(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	resp, _ := s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/upload/"+uuid.NewString()+"/evaluate", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/bogus", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResultReportsFailure(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	job := &models.EvaluationJob{UploadID: uuid.New(), Status: models.StatusQueued}
	require.NoError(t, s.jobs.Create(job))
	require.NoError(t, s.jobs.UpdateError(job.ID, "Text file is empty"))

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+job.ID.String(), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode[models.ResultResponse](t, body)
	assert.Equal(t, "failed", result.Status)
	require.NotNil(t, result.ErrorMessage)
	assert.Equal(t, "Text file is empty", *result.ErrorMessage)
	assert.Nil(t, result.Result)
}
