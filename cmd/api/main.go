package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/caroya1/campus-market/internal/config"
	"github.com/caroya1/campus-market/internal/httpx"
	"github.com/caroya1/campus-market/internal/identity"
	kafkax "github.com/caroya1/campus-market/internal/kafka"
	"github.com/caroya1/campus-market/internal/market"
	"github.com/caroya1/campus-market/internal/memstore"
	"github.com/caroya1/campus-market/internal/postgres"
	"github.com/caroya1/campus-market/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store backend: postgres in deployment, memory for local hacking.
	var store market.Store
	switch cfg.Store {
	case "memory":
		store = memstore.New()
		log.Println("using in-memory store")
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer db.Close()
		store = postgres.NewStore(db)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (one writer, topic set per message)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	// Services
	tokens := identity.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	ident := identity.NewService(store, tokens)
	ledger := market.NewLedger(store)
	engine := market.NewOrderEngine(store, ledger)
	activities := market.NewActivityManager(store)
	cart := market.NewCartService(store)
	catalog := market.NewCatalogService(store)
	forum := market.NewForumService(store)

	// Handlers
	router := httpx.NewRouter()

	ah := &httpx.AuthHandler{Identity: ident}
	ch := &httpx.CatalogHandler{Catalog: catalog}
	acth := &httpx.ActivitiesHandler{Activities: activities, Producer: prod, Service: cfg.ServiceName}
	fh := &httpx.ForumHandler{Forum: forum}

	ah.Register(router)
	ch.Register(router)
	acth.RegisterPublic(router)
	fh.RegisterPublic(router)

	auth := &httpx.Auth{Identity: ident}
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		(&httpx.CartHandler{Cart: cart}).Register(r)
		(&httpx.OrdersHandler{
			Engine:   engine,
			Producer: prod,
			Redis:    rdb,
			Service:  cfg.ServiceName,
		}).Register(r)
		acth.Register(r)
		fh.Register(r)
		(&httpx.ProfileHandler{
			Identity:   ident,
			Ledger:     ledger,
			Forum:      forum,
			Activities: activities,
		}).Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
