// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package boundary implements the HTTP surface the bridge exposes to the
// outside world (spec component 4.J): webhook ingress, hook ingest,
// internal notify, and a health check. Grounded on internal/api/router.go
// for the mux wiring and internal/api/tls.go for TLS resolution.
package boundary

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/tailscale/tscert"

	"github.com/wingedpig/workerbridge/internal/admin"
	"github.com/wingedpig/workerbridge/internal/chat"
)

// Router is the subset of *router.Router the server dispatches webhook
// events to.
type Router interface {
	Handle(ctx context.Context, ev chat.Event)
}

// Deliverer is the subset of *response.Pipeline the server drives from
// the hook-ingest endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, worker, text string) error
}

// ChatIDLister gathers every chat identity the notify fan-out should
// reach — satisfied by a small adapter over *registry.Registry and
// *coordination.Store built by the caller (internal/app).
type ChatIDLister interface {
	KnownChatIDs(ctx context.Context) []string
}

// Config configures one boundary listener.
type Config struct {
	Host          string
	Port          int
	WebhookSecret string
	TLSCert       string
	TLSKey        string
	TailscaleCert bool
}

// Server is the boundary HTTP server.
type Server struct {
	cfg Config

	router     Router
	gate       *admin.Gate
	pipeline   Deliverer
	chatIDs    ChatIDLister
	chatClient chat.Client

	httpServer *http.Server
	mux        *mux.Router

	notifySubsMu sync.Mutex
	notifySubs   map[chan string]struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// New builds a Server wired to the given collaborators.
func New(cfg Config, rt Router, gate *admin.Gate, pipeline Deliverer, chatIDs ChatIDLister, chatClient chat.Client) *Server {
	s := &Server{
		cfg:        cfg,
		router:     rt,
		gate:       gate,
		pipeline:   pipeline,
		chatIDs:    chatIDs,
		chatClient: chatClient,
		notifySubs: make(map[chan string]struct{}),
	}

	r := mux.NewRouter()
	r.Use(Logging)
	r.Use(Recovery)
	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleWebhook).Methods(http.MethodPost)
	r.HandleFunc("/response", s.handleResponse).Methods(http.MethodPost)
	r.HandleFunc("/notify", s.handleNotify).Methods(http.MethodPost)
	r.HandleFunc("/notify/stream", s.handleNotifyStream).Methods(http.MethodGet)
	s.mux = r

	return s
}

// Router exposes the underlying mux, mainly for tests.
func (s *Server) Router() *mux.Router { return s.mux }

// ListenAndServe starts the server, auto-selecting TLS when configured.
func (s *Server) ListenAndServe() error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.TailscaleCert {
		s.httpServer.TLSConfig = &tls.Config{GetCertificate: tscert.GetCertificate}
		log.Printf("boundary server listening on https://%s (tailscale cert)", addr)
		return s.httpServer.ListenAndServeTLS("", "")
	}

	if s.cfg.TLSCert != "" && s.cfg.TLSKey != "" {
		log.Printf("boundary server listening on https://%s", addr)
		return s.httpServer.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
	}

	log.Printf("boundary server listening on http://%s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	return s.httpServer.Shutdown(shutdownCtx)
}
