package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/paperbase/ragd/internal/api"
	"github.com/paperbase/ragd/internal/api/middleware"
	"github.com/paperbase/ragd/internal/chunker"
	"github.com/paperbase/ragd/internal/config"
	"github.com/paperbase/ragd/internal/embedding"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/ingest"
	"github.com/paperbase/ragd/internal/llm"
	"github.com/paperbase/ragd/internal/models"
	"github.com/paperbase/ragd/internal/rag"
	"github.com/paperbase/ragd/internal/vectorstore/memory"
	"github.com/rs/zerolog"
)

// stubLLM is a scripted model client so API tests run without network
// access.
type stubLLM struct {
	Response    *llm.Response
	Err         error
	LastRequest llm.Request
	Calls       int
}

func (s *stubLLM) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.Calls++
	s.LastRequest = req
	return s.Response, s.Err
}

func (s *stubLLM) CompleteWithRetry(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return s.Complete(ctx, req)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupTestAPI(t *testing.T, client llm.Client) *restful.Container {
	t.Helper()
	logger := zerolog.New(io.Discard).Level(zerolog.Disabled)

	embedder, err := embedding.NewFakeEmbedder(32)
	if err != nil {
		t.Fatal(err)
	}
	store := memory.New()
	ch, err := chunker.New(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	prompt := config.AnswerPrompt{
		System:    "Use this context: {context}",
		MaxTokens: 200,
	}

	pipeline := ingest.NewPipeline(ch, embedder, store, nil, time.Second, &logger)
	retriever := rag.NewRetriever(embedder, store, 3, time.Second, &logger)
	answerer := rag.NewAnswerer(client, prompt, time.Second, &logger)

	handler := api.NewHandler(pipeline, retriever, answerer, nil, store, t.TempDir(), &logger)

	container := restful.NewContainer()
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)
	return container
}

func uploadFile(t *testing.T, container *restful.Container, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func postQuery(t *testing.T, container *restful.Container, request models.QueryRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(request)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(t, &stubLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got %q", response.Status)
	}
	if response.ChunksIndexed != 0 {
		t.Errorf("Expected empty index, got %d chunks", response.ChunksIndexed)
	}
}

func TestAPI_UploadTextFile(t *testing.T) {
	container := setupTestAPI(t, &stubLLM{})

	contents := strings.Repeat("Uploaded documents become searchable chunks. ", 10)
	recorder := uploadFile(t, container, "notes.txt", contents)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var response envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "success" {
		t.Errorf("Expected status 'success', got %q", response.Status)
	}

	var result models.IngestResult
	if err := json.Unmarshal(response.Data, &result); err != nil {
		t.Fatalf("Failed to parse ingest result: %v", err)
	}
	if result.DocumentID == "" || result.ChunksIndexed == 0 {
		t.Errorf("Unexpected ingest result: %+v", result)
	}

	// Health now reflects the indexed chunks.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	healthRecorder := httptest.NewRecorder()
	container.ServeHTTP(healthRecorder, req)

	var health api.HealthResponse
	if err := json.Unmarshal(healthRecorder.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.ChunksIndexed != result.ChunksIndexed {
		t.Errorf("Health reports %d chunks, ingest reported %d", health.ChunksIndexed, result.ChunksIndexed)
	}
}

func TestAPI_UploadUnsupportedType(t *testing.T) {
	container := setupTestAPI(t, &stubLLM{})

	recorder := uploadFile(t, container, "image.png", "binary junk")

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var response middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse error response: %v", err)
	}
	if response.Status != "error" {
		t.Errorf("Expected status 'error', got %q", response.Status)
	}
	if response.Error != string(errdefs.KindParse) {
		t.Errorf("Expected parse_error kind, got %q", response.Error)
	}
}

func TestAPI_QueryAfterUpload(t *testing.T) {
	stub := &stubLLM{Response: &llm.Response{Content: "The document covers chunking.", StopReason: "end_turn"}}
	container := setupTestAPI(t, stub)

	contents := strings.Repeat("Chunking splits long documents into retrievable pieces. ", 10)
	if recorder := uploadFile(t, container, "notes.txt", contents); recorder.Code != http.StatusOK {
		t.Fatalf("Upload failed: %d %s", recorder.Code, recorder.Body.String())
	}

	recorder := postQuery(t, container, models.QueryRequest{Question: "What is chunking?", TopK: 2})
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var response envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	var data models.QueryData
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatal(err)
	}

	if data.Answer != "The document covers chunking." {
		t.Errorf("Unexpected answer %q", data.Answer)
	}
	if len(data.Sources) == 0 || len(data.Sources) > 2 {
		t.Errorf("Expected 1-2 sources, got %d", len(data.Sources))
	}
	for _, src := range data.Sources {
		if src.Score < 0 || src.Score > 1 {
			t.Errorf("Score %f out of [0,1]", src.Score)
		}
	}

	// The model saw the retrieved chunks, not the raw placeholder.
	if strings.Contains(stub.LastRequest.System, "{context}") {
		t.Error("Expected the context placeholder substituted")
	}
	if !strings.Contains(stub.LastRequest.System, "Chunking splits") {
		t.Error("Expected retrieved chunk text in the system prompt")
	}
	if stub.LastRequest.Prompt != "What is chunking?" {
		t.Errorf("Expected the question as user prompt, got %q", stub.LastRequest.Prompt)
	}
}

func TestAPI_QueryEmptyIndexStillAnswers(t *testing.T) {
	stub := &stubLLM{Response: &llm.Response{Content: "I don't know."}}
	container := setupTestAPI(t, stub)

	recorder := postQuery(t, container, models.QueryRequest{Question: "Anything in there?"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	if stub.Calls != 1 {
		t.Errorf("Expected the model called once even with an empty index, got %d", stub.Calls)
	}

	var response envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	var data models.QueryData
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Answer != "I don't know." {
		t.Errorf("Unexpected answer %q", data.Answer)
	}
	if len(data.Sources) != 0 {
		t.Errorf("Expected no sources, got %d", len(data.Sources))
	}
}

func TestAPI_QueryBlankQuestion(t *testing.T) {
	container := setupTestAPI(t, &stubLLM{})

	recorder := postQuery(t, container, models.QueryRequest{Question: "   "})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
}

func TestAPI_QueryGenerationFailure(t *testing.T) {
	stub := &stubLLM{Err: errdefs.New(errdefs.KindGeneration, "model throttled")}
	container := setupTestAPI(t, stub)

	recorder := postQuery(t, container, models.QueryRequest{Question: "Will this fail?"})
	if recorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var response middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if response.Error != string(errdefs.KindGeneration) {
		t.Errorf("Expected generation_error kind, got %q", response.Error)
	}
}

func TestAPI_CacheClearWithoutCache(t *testing.T) {
	container := setupTestAPI(t, &stubLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/clear", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}
}
