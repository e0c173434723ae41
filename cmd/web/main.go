// cmd/web/main.go
//
// Formguard – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load conf/.env, then config (YAML + FORMGUARD_ env), resolving
//     `vault:` references through a Vault client made on first use.
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load form definitions: embedded samples first, then forms.dirs, so a
//     site can override a sample by ID.
//
//  4. Open the submission DB when a DSN is configured and run component
//     migrations.
//
//  5. Start the webhook outbox workers.
//
//  6. Initialise components and mount each at /<name>, behind RequestID,
//     RealIP, ClientInfo, Recoverer, and security headers.
//
//  7. Serve /metrics and /healthz; shut down cleanly on SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/formguard/components/forms/defs"
	"github.com/yanizio/formguard/internal/component"
	"github.com/yanizio/formguard/internal/config"
	"github.com/yanizio/formguard/internal/database"
	"github.com/yanizio/formguard/internal/form"
	"github.com/yanizio/formguard/internal/logger"
	"github.com/yanizio/formguard/internal/message"
	"github.com/yanizio/formguard/internal/metrics"
	"github.com/yanizio/formguard/internal/middleware"
	"github.com/yanizio/formguard/internal/routing"
	"github.com/yanizio/formguard/internal/server"
	"github.com/yanizio/formguard/internal/vault"
	"github.com/yanizio/formguard/internal/view"

	_ "github.com/yanizio/formguard/components/forms" // registers the forms component
)

const shutdownGrace = 10 * time.Second

// lazyVault connects to Vault the first time config asks for a secret, so
// deployments without `vault:` references never need VAULT_ADDR.
type lazyVault struct {
	ctx  context.Context
	once sync.Once
	cli  *vault.Client
	err  error
}

func (l *lazyVault) Secret(ctx context.Context, path, key string) (string, error) {
	l.once.Do(func() {
		l.cli, l.err = vault.New(l.ctx, vault.Options{CacheTTL: 5 * time.Minute})
	})
	if l.err != nil {
		return "", l.err
	}
	return l.cli.Secret(ctx, path, key)
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("formguard: %v", err)
	}
}

func run(ctx context.Context) error {
	root := config.RootDir()

	//
	// ── 1.  Config (Vault-backed secrets on demand) ─────────────────────
	//
	zap.ReplaceGlobals(logger.Console(zapcore.InfoLevel).Desugar())

	cfg, err := config.LoadFrom(ctx, root, &lazyVault{ctx: ctx})
	if err != nil {
		return err
	}

	//
	// ── 2.  Logger ───────────────────────────────────────────────────────
	//
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logDir := cfg.Log.Dir
	if !filepath.IsAbs(logDir) {
		logDir = filepath.Join(root, logDir)
	}
	logOut, err := logger.New(logger.Options{Dir: logDir, Tee: cfg.Log.Tee && runningInTTY(), Level: level})
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 3.  Form definitions ─────────────────────────────────────────────
	//
	forms := form.NewRegistry()
	if !cfg.Forms.SkipEmbedded {
		if _, err := forms.LoadFS(defs.FS, "."); err != nil {
			return err
		}
	}
	for _, dir := range cfg.Forms.Dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		n, err := forms.LoadDir(dir)
		if err != nil {
			return err
		}
		logOut.Infow("form definitions loaded", "dir", dir, "count", n)
	}
	metrics.FormsLoaded.Set(float64(forms.Len()))

	//
	// ── 4.  Submission DB (optional) ─────────────────────────────────────
	//
	actions := &form.Actions{Forms: forms}
	if cfg.Database.DSN != "" {
		db, err := database.OpenWithOptions(ctx, cfg.Database.ResolvedDSN(), cfg.Database.MaxOpen, cfg.Database.MaxIdle)
		if err != nil {
			return err
		}
		defer db.Close()
		for _, c := range component.All() {
			if err := database.Migrate(ctx, db, c.Migrations()); err != nil {
				return err
			}
		}
		actions.Store = database.NewSubmissionStore(db)
		logOut.Infow("submission store online")
	} else {
		logOut.Warnw("no database configured; store actions will fail")
	}

	//
	// ── 5.  Webhook outbox ───────────────────────────────────────────────
	//
	outbox := message.NewOutbox(message.Options{
		Workers:  cfg.Webhook.Workers,
		Capacity: cfg.Webhook.Capacity,
		Timeout:  cfg.Webhook.Timeout,
		Log:      logOut,
	})
	actions.Outbox = outbox
	logOut.Infow("outbox ready", "outbox", outbox.String())

	//
	// ── 6.  Components and router ────────────────────────────────────────
	//
	tokens, ephemeral, err := form.NewTokens([]byte(cfg.Security.CSRFKey), cfg.Security.CSRFMaxAge)
	if err != nil {
		return err
	}
	if ephemeral {
		logOut.Warnw("security.csrf_key unset or short; using a per-process key")
	}

	layoutDir := cfg.Forms.LayoutDir
	if layoutDir != "" && !filepath.IsAbs(layoutDir) {
		layoutDir = filepath.Join(root, layoutDir)
	}

	if err := component.InitAll(component.Deps{
		Forms:   forms,
		Actions: actions,
		Tokens:  tokens,
		Pages:   view.New(layoutDir),
		Log:     logOut,
	}); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.ClientInfo(logOut), chimw.Recoverer, middleware.Security)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	for _, c := range component.All() {
		r.Mount(routing.BuildPath("", c.Name()), c.Routes())
	}

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	//
	// ── 7.  Serve until signalled ────────────────────────────────────────
	//
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return outbox.Run(gctx) })
	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr, "forms", forms.Len())
		return server.Serve(gctx, server.New(cfg.HTTP, handler), shutdownGrace)
	})
	return g.Wait()
}
