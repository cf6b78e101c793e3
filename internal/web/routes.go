package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/tkaraca/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	scanHandler := handlers.NewScanHandler(s.deps.Scanner)
	recordsHandler := handlers.NewRecordsHandler(s.deps.Attendance)
	galleryHandler := handlers.NewGalleryHandler(s.deps.Gallery, s.deps.Engine)
	studentsHandler := handlers.NewStudentsHandler(s.deps.Students, s.deps.Embeddings)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Attendance
		r.Post("/attendance/scan", scanHandler.Scan)
		r.Get("/attendance/records", recordsHandler.List)
		r.Get("/attendance/stats", recordsHandler.Stats)

		// Gallery
		r.Get("/gallery/info", galleryHandler.Info)
		r.Post("/gallery/refresh", galleryHandler.Refresh)

		// Students
		r.Post("/students", studentsHandler.Create)
		r.Get("/students/{id}", studentsHandler.Get)
	})
}
