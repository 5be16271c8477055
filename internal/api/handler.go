package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/paperbase/ragd/internal/api/middleware"
	"github.com/paperbase/ragd/internal/cache"
	"github.com/paperbase/ragd/internal/ingest"
	"github.com/paperbase/ragd/internal/models"
	"github.com/paperbase/ragd/internal/rag"
	"github.com/paperbase/ragd/internal/vectorstore"
	"github.com/rs/zerolog"
)

// maxUploadBytes caps the multipart form kept in memory per upload.
const maxUploadBytes = 32 << 20

// Response is the success envelope every endpoint writes.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

type Handler struct {
	pipeline  *ingest.Pipeline
	retriever *rag.Retriever
	answerer  *rag.Answerer
	cache     *cache.AnswerCache
	store     vectorstore.Store
	uploadDir string
	logger    *zerolog.Logger
}

func NewHandler(pipeline *ingest.Pipeline, retriever *rag.Retriever, answerer *rag.Answerer, answerCache *cache.AnswerCache, store vectorstore.Store, uploadDir string, logger *zerolog.Logger) *Handler {
	return &Handler{
		pipeline:  pipeline,
		retriever: retriever,
		answerer:  answerer,
		cache:     answerCache,
		store:     store,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// POST /api/v1/upload
// Multipart form with a "file" part (.pdf or .txt)
// Returns: IngestResult
func (h *Handler) Upload(req *restful.Request, resp *restful.Response) {
	if err := req.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse multipart form")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	file, header, err := req.Request.FormFile("file")
	if err != nil {
		h.logger.Error().Err(err).Msg("Missing file part in upload")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read upload")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	filename := filepath.Base(header.Filename)
	h.logger.Info().
		Str("filename", filename).
		Int("bytes", len(data)).
		Msg("Upload received")

	h.saveUpload(filename, data)

	result, err := h.pipeline.Ingest(req.Request.Context(), filename, data)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", filename).Msg("Ingestion failed")
		middleware.WriteError(resp, err)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, Response{
		Status:  "success",
		Message: "File uploaded and processed successfully",
		Data:    result,
	})
}

// POST /api/v1/query
// Body: QueryRequest
// Returns: QueryData
func (h *Handler) Query(req *restful.Request, resp *restful.Response) {
	var queryRequest models.QueryRequest
	if err := req.ReadEntity(&queryRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(queryRequest.Question)
	if question == "" {
		middleware.HandleError(resp, nil, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	topK := queryRequest.TopK

	if h.cache != nil {
		if cached, _ := h.cache.Get(ctx, question, topK); cached != nil {
			h.logger.Info().Str("question", question).Msg("Answer served from cache")
			resp.WriteHeaderAndEntity(http.StatusOK, Response{
				Status:  "success",
				Message: "Query answered",
				Data: models.QueryData{
					Answer:  cached.Text,
					Sources: cached.Sources,
					Cached:  true,
				},
			})
			return
		}
	}

	retrieved, err := h.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		h.logger.Error().Err(err).Msg("Retrieval failed")
		middleware.WriteError(resp, err)
		return
	}

	answer, err := h.answerer.Answer(ctx, question, retrieved)
	if err != nil {
		h.logger.Error().Err(err).Msg("Answer generation failed")
		middleware.WriteError(resp, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, question, topK, answer); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to cache answer")
		}
	}

	resp.WriteHeaderAndEntity(http.StatusOK, Response{
		Status:  "success",
		Message: "Query answered",
		Data: models.QueryData{
			Answer:  answer.Text,
			Sources: answer.Sources,
		},
	})
}

// GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	count, err := h.store.Count(req.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Store unreachable")
		middleware.WriteError(resp, err)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       "1.0.0",
		ChunksIndexed: count,
	})
}

// POST /api/v1/admin/cache/clear
func (h *Handler) ClearCache(req *restful.Request, resp *restful.Response) {
	if h.cache == nil {
		resp.WriteHeaderAndEntity(http.StatusOK, Response{
			Status:  "success",
			Message: "Answer cache not configured",
		})
		return
	}
	if err := h.cache.Flush(req.Request.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Cache flush failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}
	resp.WriteHeaderAndEntity(http.StatusOK, Response{
		Status:  "success",
		Message: "Answer cache cleared",
	})
}

// saveUpload keeps a copy of the raw file for reprocessing. Failures
// are logged, not surfaced; the index is the source of truth.
func (h *Handler) saveUpload(filename string, data []byte) {
	if h.uploadDir == "" {
		return
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to create upload directory")
		return
	}
	path := filepath.Join(h.uploadDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		h.logger.Warn().Err(err).Str("path", path).Msg("Failed to save upload")
	}
}
