package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"carscout/internal/config"
	"carscout/internal/llm"
	"carscout/internal/offers"
	"carscout/internal/orchestrator"
	"carscout/internal/routing"
	"carscout/internal/server"
	"carscout/internal/session"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := session.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	catalog, err := offers.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load catalog %s: %v", cfg.CatalogPath, err)
	}
	log.Printf("[MAIN] catalog loaded: %d offers", catalog.Len())
	source := offers.NewCachedSource(catalog, cfg.OfferCacheSize, cfg.OfferCacheTTL)

	var classifier llm.Classifier
	var responder llm.Responder
	if cfg.LLMEnabled {
		client := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		classifier = client
		responder = client
		log.Printf("[MAIN] model collaborator enabled (model=%s)", cfg.OpenAIModel)
	} else {
		log.Printf("[MAIN] model collaborator disabled, heuristic pipeline only")
	}

	orch := orchestrator.New(store, source, routing.NewPolicy(routing.DefaultConfig()), classifier, responder)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := server.NewServer(cfg, orch, store, reg)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[MAIN] listening on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("[MAIN] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("[MAIN] shutdown: %v", err)
	}
}

// #endregion main
