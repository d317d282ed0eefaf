package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rubiojr/hostsearch/pkg/censys"
	"github.com/rubiojr/hostsearch/pkg/log"
)

// Upstream performs a hosts search against the third-party API.
// *censys.Client implements it.
type Upstream interface {
	Search(ctx context.Context, req censys.SearchRequest) (*censys.HostsResponse, error)
}

type Server struct {
	upstream Upstream
	logger   *log.Logger
}

func NewServer(upstream Upstream) *Server {
	return &Server{
		upstream: upstream,
		logger:   log.ForService("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{
		Message: message,
		Error:   err.Error(),
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
