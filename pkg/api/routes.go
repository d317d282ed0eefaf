package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/fetchSearchResults", s.HandleFetchSearchResults)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
