package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - alert and log stream
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Ingest (transcript to draft cards)
	mux.HandleFunc("/api/ingest", s.app.IngestHandler.IngestHandler)

	// API routes - Cards
	mux.HandleFunc("/api/cards", s.app.CardHandler.CardsHandler)       // GET (list), POST (create)
	mux.HandleFunc("/api/cards/", s.app.CardHandler.CardRoutesHandler) // GET/PUT/DELETE /{id}, GET /{id}/similar

	// API routes - Alerts
	mux.HandleFunc("/api/alerts", s.app.AlertHandler.ListAlertsHandler)
	mux.HandleFunc("/api/alerts/enable", s.app.AlertHandler.EnableAlertsHandler)
	mux.HandleFunc("/api/event/placeholder", s.app.AlertHandler.EventPlaceholderHandler)

	// API routes - Portfolio
	mux.HandleFunc("/api/portfolio", s.app.PortfolioHandler.ListHandler)
	mux.HandleFunc("/api/portfolio/stats", s.app.PortfolioHandler.StatsHandler)
	mux.HandleFunc("/api/portfolio/positions", s.app.PortfolioHandler.OpenPositionHandler)
	mux.HandleFunc("/api/portfolio/positions/", s.app.PortfolioHandler.PositionRoutesHandler) // PUT /{id}/close

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/healthz", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
