package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"taskflow/internal/config"
	"taskflow/internal/serverapp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	path := os.Getenv("TASKFLOW_CONFIG")
	if path == "" {
		path = "taskflow.yml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := log.New(os.Stderr, "", 0)
	app, err := serverapp.Open(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer app.Close()

	handler, err := serverapp.NewHandler(serverapp.Options{
		App:           app,
		StaticDir:     cfg.Server.StaticDir,
		UseDiskStatic: cfg.Server.DevStatic || serverapp.UseDiskStaticByEnv(),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on http://localhost%s (storage=%s)", cfg.Server.Addr, cfg.Storage.Backend)
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
