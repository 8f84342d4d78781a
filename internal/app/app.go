// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires every bridge component together into one process:
// configuration, the coordination filesystem, the multiplexer, the
// routing engine, the response pipeline, and the boundary HTTP server.
// Grounded on internal/app/app.go's New/Initialize/Run/Shutdown shape —
// the teacher's own top-level wiring point.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wingedpig/workerbridge/internal/admin"
	"github.com/wingedpig/workerbridge/internal/boundary"
	"github.com/wingedpig/workerbridge/internal/chat"
	"github.com/wingedpig/workerbridge/internal/concurrency"
	"github.com/wingedpig/workerbridge/internal/config"
	"github.com/wingedpig/workerbridge/internal/coordination"
	"github.com/wingedpig/workerbridge/internal/multiplexer"
	"github.com/wingedpig/workerbridge/internal/registry"
	"github.com/wingedpig/workerbridge/internal/response"
	"github.com/wingedpig/workerbridge/internal/router"
)

const settingsDebounce = 500 * time.Millisecond

// App is the bridge's top-level container, holding every wired
// component for the lifetime of the process.
type App struct {
	mu sync.RWMutex

	configPath string
	version    string
	config     *config.Config

	store    *coordination.Store
	mux      *multiplexer.Manager
	registry *registry.Registry
	gate     *admin.Gate
	chat     chat.Client
	typing   *concurrency.TypingRegistry
	pipeline *response.Pipeline
	router   *router.Router
	watcher  *coordination.SettingsWatcher
	server   *boundary.Server
	shutdown concurrency.Shutdown

	done     chan struct{}
	stopOnce sync.Once
}

// Options holds the command-line overrides accepted by cmd/bridge.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	Debug      bool
	Version    string
}

// New loads configuration and wires every collaborator. No goroutines
// are started yet — that happens in Run.
func New(opts Options) (*App, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(context.Background(), opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}

	app := &App{
		configPath: opts.ConfigPath,
		version:    opts.Version,
		config:     cfg,
		done:       make(chan struct{}),
	}

	store, err := coordination.NewStore(cfg.Node.SessionsDir, cfg.Node.NodeRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open coordination store: %w", err)
	}
	app.store = store

	app.mux = multiplexer.NewManager(multiplexer.NewTmuxExecutor(), cfg.Node.Prefix, cfg.Agent.BinaryName)
	app.registry = registry.New(app.mux, store)
	app.gate = admin.New(store, cfg.Node.AdminChatID)
	app.chat = chat.NewClient(cfg.Chat.BotToken, cfg.Chat.APIBase, app.gate.ChatID())
	app.typing = concurrency.NewTypingRegistry()

	app.pipeline = &response.Pipeline{
		Chat:    app.chat,
		ChatIDs: store,
		Pending: store,
		Media: response.MediaPolicy{
			ImageAllowlist:   cfg.Media.ImageAllowlist,
			DocumentDenylist: cfg.Media.DocumentDenylist,
			ImageExtensions:  cfg.Media.ImageExtensions,
			MaxFileSizeBytes: cfg.Media.MaxFileSizeBytes,
		},
		StopTyping: app.typing.Stop,
	}

	app.router = &router.Router{
		Mux:      app.mux,
		Registry: app.registry,
		Coord:    store,
		Chat:     app.chat,
		Typing:   app.typing,
		Node:     cfg.Node,
		Server:   cfg.Server,
		Commands: cfg.Commands,
		Agent:    cfg.Agent,
		Sandbox:  cfg.Sandbox,
		Media:    cfg.Media,
	}

	app.server = boundary.New(
		boundary.Config{
			Host:          cfg.Server.Host,
			Port:          cfg.Server.Port,
			WebhookSecret: cfg.Server.WebhookSecret,
			TLSCert:       cfg.Server.TLSCert,
			TLSKey:        cfg.Server.TLSKey,
			TailscaleCert: cfg.Server.TailscaleCert,
		},
		app.router,
		app.gate,
		app.pipeline,
		&chatIDLister{registry: app.registry, store: store, gate: app.gate},
		app.chat,
	)

	return app, nil
}

// chatIDLister gathers every chat identity the notify fan-out should
// reach: the admin (always, once claimed) plus every live worker's
// chat_id, deduplicated.
type chatIDLister struct {
	registry *registry.Registry
	store    *coordination.Store
	gate     *admin.Gate
}

func (c *chatIDLister) KnownChatIDs(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	add(c.gate.ChatID())

	workers, err := c.registry.List(ctx)
	if err != nil {
		log.Printf("app: list workers for notify fan-out: %v", err)
		return ids
	}
	for _, w := range workers {
		add(c.store.GetChatID(w))
	}
	return ids
}

// Run starts the boundary server and the settings watcher, then blocks
// until a termination signal, ctx cancellation, or an explicit Stop.
func (app *App) Run(ctx context.Context) error {
	watcher, err := coordination.NewSettingsWatcher(app.config.Node.NodeRoot, settingsDebounce, app.onSettingsChange)
	if err != nil {
		log.Printf("app: settings watcher disabled: %v", err)
	} else {
		app.watcher = watcher
		go app.watcher.Run(ctx)
	}

	if err := app.store.SetPort(app.config.Server.Port); err != nil {
		log.Printf("app: failed to publish port for hook discovery: %v", err)
	}

	go func() {
		log.Printf("bridge listening on %s:%d", app.config.Server.Host, app.config.Server.Port)
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("boundary server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %v, shutting down...", sig)
	case <-ctx.Done():
		log.Printf("context cancelled, shutting down...")
	case <-app.done:
		log.Printf("shutdown requested...")
	}

	return app.Shutdown(context.Background())
}

// onSettingsChange re-reads the admin chat id node file and offers the id
// to the admin gate. The gate takes it only while it holds no admin yet;
// an admin already set is not replaced by editing the file.
func (app *App) onSettingsChange() {
	app.mu.RLock()
	gate := app.gate
	store := app.store
	app.mu.RUnlock()

	if id := store.GetAdminChatID(); id != "" && id != gate.ChatID() {
		log.Printf("app: admin chat id changed on disk, reclaiming as %s", id)
		gate.Allow(id)
	}
}

// Shutdown broadcasts a brief offline notice to every known chat
// identity, then stops the boundary server and the settings watcher.
func (app *App) Shutdown(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	lister := &chatIDLister{registry: app.registry, store: app.store, gate: app.gate}
	app.shutdown.Broadcast(shutdownCtx, app.chat, lister.KnownChatIDs(shutdownCtx))

	if app.server != nil {
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			log.Printf("error shutting down boundary server: %v", err)
		}
	}

	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			log.Printf("error closing settings watcher: %v", err)
		}
	}

	log.Println("shutdown complete")
	return nil
}

// Stop signals the app to shut down. Safe to call multiple times.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}
