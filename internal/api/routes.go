package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/paperbase/ragd/internal/api/middleware"
	"github.com/paperbase/ragd/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}).
			Returns(503, "Store Unavailable", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/upload").
			To(handler.Upload).
			Doc("Upload and index a document").
			Metadata(restfulspec.KeyOpenAPITags, []string{"documents"}).
			Consumes("multipart/form-data").
			Writes(Response{}).
			Returns(200, "OK", Response{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Upstream Failure", middleware.ErrorResponse{}).
			Returns(503, "Store Unavailable", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/query").
			To(handler.Query).
			Doc("Ask a question over the indexed documents").
			Metadata(restfulspec.KeyOpenAPITags, []string{"query"}).
			Reads(models.QueryRequest{}).
			Writes(Response{}).
			Returns(200, "OK", Response{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Upstream Failure", middleware.ErrorResponse{}).
			Returns(503, "Store Unavailable", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/admin/cache/clear").
			To(handler.ClearCache).
			Doc("Drop all cached answers").
			Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
			Writes(Response{}).
			Returns(200, "OK", Response{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}

// RegisterDocs serves the generated OpenAPI document at /apidocs.json.
func RegisterDocs(container *restful.Container) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(config))
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "ragd",
			Description: "Question answering over uploaded documents",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "documents", Description: "Document upload and indexing"}},
		{TagProps: spec.TagProps{Name: "query", Description: "Grounded question answering"}},
		{TagProps: spec.TagProps{Name: "health", Description: "Service health"}},
		{TagProps: spec.TagProps{Name: "admin", Description: "Operational endpoints"}},
	}
}
