package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/everbite/storefront/api"
	"github.com/everbite/storefront/config"
	"github.com/everbite/storefront/handler"
	"github.com/everbite/storefront/kv"
	"github.com/everbite/storefront/service"
	"github.com/everbite/storefront/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	// --- Session persistence ---
	var sessionKV kv.Store
	if cfg.RedisURL != "" {
		redisKV, err := kv.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisKV.Close()
		sessionKV = redisKV
		log.Println("session persistence: redis")
	} else {
		sessionKV = kv.NewMemory()
		log.Println("session persistence: in-memory (sessions will not survive restarts)")
	}

	// --- Backend client ---
	backend := api.New(cfg.APIURL)

	// --- Stores ---
	cart := store.NewCart()
	session := store.NewSession(sessionKV, backend, time.Duration(cfg.SessionTTL))
	if err := session.Restore(ctx); err != nil {
		// a failed restore just starts anonymous
		log.Printf("session restore: %v", err)
	}
	if session.IsAuthenticated() {
		log.Printf("session restored for %s", session.Email())
	}

	// --- Services ---
	catalog := service.NewCatalog(backend)
	checkout := service.NewCheckout(cart, session, backend)
	orders := service.NewOrders(backend, session)

	// --- Handler + router ---
	h := handler.New(catalog, cart, session, checkout, orders)
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	log.Printf("storefront listening on %s (backend %s)", cfg.Addr, cfg.APIURL)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("server: %v", err)
	}
}
