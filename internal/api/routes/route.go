package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/ilkin0/metadata-api/internal/api/handlers"
	"github.com/ilkin0/metadata-api/internal/service"
)

func MetadataRoutes(metadataService *service.MetadataService, maxUploadBytes int64) chi.Router {
	r := chi.NewRouter()
	metadataHandler := handlers.NewMetadataHandler(metadataService, maxUploadBytes)

	r.Get("/", metadataHandler.Root)
	r.Get("/health", metadataHandler.Health)
	r.Post("/extract-metadata", metadataHandler.ExtractMetadata)
	return r
}
