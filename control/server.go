package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/sv4u/plsync/control/handlers"
)

// Server is the operator HTTP server.
type Server struct {
	httpServer  *http.Server
	router      *mux.Router
	handlers    *handlers.Handlers
	broadcaster *EventBroadcaster
}

// NewServer wires the handlers and event feed into a configured HTTP
// server.
func NewServer(port int, h *handlers.Handlers, broadcaster *EventBroadcaster) *Server {
	server := &Server{
		router:      mux.NewRouter(),
		handlers:    h,
		broadcaster: broadcaster,
	}
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      recoveryMiddleware(server.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute, // direct downloads can be slow
		IdleTimeout:  60 * time.Second,
	}
	return server
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handlers.Health).Methods("GET")
	api.HandleFunc("/status", s.handlers.Status).Methods("GET")

	api.HandleFunc("/auth/url", s.handlers.AuthURL).Methods("GET")
	api.HandleFunc("/auth/callback", s.handlers.AuthCallback).Methods("GET")

	api.HandleFunc("/playlist/info", s.handlers.PlaylistInfo).Methods("GET")
	api.HandleFunc("/playlist/tracks", s.handlers.PlaylistTracks).Methods("GET")
	api.HandleFunc("/playlist/new", s.handlers.PlaylistNew).Methods("GET")

	api.HandleFunc("/sync", s.handlers.SyncTrigger).Methods("POST")
	api.HandleFunc("/retry", s.handlers.RetryTrigger).Methods("POST")
	api.HandleFunc("/cleanup", s.handlers.Cleanup).Methods("POST")

	api.HandleFunc("/config", s.handlers.ConfigGet).Methods("GET")

	api.HandleFunc("/download/info", s.handlers.DownloadInfo).Methods("GET")
	api.HandleFunc("/download", s.handlers.Download).Methods("POST")

	api.HandleFunc("/events", s.broadcaster.HandleWebSocket).Methods("GET")
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("INFO: server_listening addr=%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// recoveryMiddleware recovers handler panics into a JSON 500 response.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC: %v\n%s", err, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)

				response := map[string]interface{}{
					"error":   "Internal server error",
					"message": "A panic occurred while processing the request",
				}
				if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
					w.Write([]byte(`{"error":"Internal server error"}`))
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
