package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hallorn/broadside/pkg/api/handlers"
	"github.com/hallorn/broadside/pkg/log"
	"github.com/hallorn/broadside/pkg/repositories"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port       int
	TLS        *TLSConfig
	Repository repositories.Repository
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	router := mux.NewRouter()
	router.HandleFunc("/matches/{matchID}/players", handlers.HandleListMatchPlayers(opts.Repository)).Methods(http.MethodGet)
	router.HandleFunc("/matches/{matchID}/players/{playerUUID}", handlers.HandleGetPlayerSnapshot(opts.Repository)).Methods(http.MethodGet)
	router.HandleFunc("/matches/{matchID}/players/{playerUUID}/opponent-view", handlers.HandleGetOpponentView(opts.Repository)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
