package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"taskflow/internal/config"
	"taskflow/internal/httpmw"
	"taskflow/internal/storage"
	"taskflow/internal/task"
	"taskflow/static"
)

// App is the assembled task stack shared by the server and the CLI.
type App struct {
	Config  *config.Config
	Slot    storage.Slot
	Adapter *storage.Adapter
	Store   *task.Store
	Service *task.Service
}

// Open builds an App from cfg. The caller closes it.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	slot, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	adapter := storage.NewAdapter(slot, cfg.Storage.Key, logger)
	validator := task.NewValidator(task.RealClock{}, cfg.Tasks.MaxImageBytes)
	store := task.NewStore(ctx, adapter, validator)
	return &App{
		Config:  cfg,
		Slot:    slot,
		Adapter: adapter,
		Store:   store,
		Service: task.NewService(store, validator, task.RealClock{}),
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.Slot == nil {
		return nil
	}
	return a.Slot.Close()
}

type Options struct {
	App           *App
	StaticDir     string
	UseDiskStatic bool
	Logger        *log.Logger
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.App == nil || opts.App.Service == nil {
		return nil, errors.New("app is required")
	}
	cfg := opts.App.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = cfg.Server.StaticDir
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskflow",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if opts.App.Adapter != nil {
			if err := opts.App.Adapter.Check(r.Context()); err != nil {
				httpmw.Warn(opts.Logger, "readiness_failed", map[string]any{"error": err.Error()})
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"ok":    false,
					"error": "task storage unavailable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskflow",
			"tasks":   opts.App.Store.Len(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})

	routes := apiRoutes()
	mux.HandleFunc("/api/routes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, routes.List())
	})

	task.NewHandler(opts.App.Service, opts.Logger).Register(mux)
	task.NewPages(opts.App.Service, cfg, opts.Logger).Register(mux)

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

// UseDiskStaticByEnv reports whether TASKFLOW_DEV_STATIC asks for assets
// from disk instead of the embedded copy.
func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKFLOW_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
