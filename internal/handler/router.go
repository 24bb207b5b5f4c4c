package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Health    *HealthHandler
	Documents *DocumentHandler
	Jobs      *JobHandler
	Stats     *StatsHandler
	Ingest    *IngestHandler
	Archive   *ArchiveHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", deps.Health.Get)
	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/:id", deps.Documents.Get)
	api.GET("/jobs", deps.Jobs.List)
	api.GET("/jobs/:id", deps.Jobs.Get)
	api.GET("/stats", deps.Stats.Get)
	api.GET("/sources", deps.Ingest.Sources)
	api.POST("/ingest/:source", deps.Ingest.Run)
	api.POST("/embeddings/update", deps.Ingest.UpdateEmbeddings)
	api.GET("/archive/*key", deps.Archive.Get)
}
