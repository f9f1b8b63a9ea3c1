package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"route-sequencing-service/internal/adapters/cache"
	"route-sequencing-service/internal/adapters/distance"
	"route-sequencing-service/internal/adapters/publisher"
	"route-sequencing-service/internal/adapters/repositories"
	"route-sequencing-service/internal/api"
	"route-sequencing-service/internal/config"
	"route-sequencing-service/internal/platform/db"
	"route-sequencing-service/internal/platform/metrics"
	"route-sequencing-service/internal/ports"
	"route-sequencing-service/internal/predictor"
	"route-sequencing-service/internal/training"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires the model store, optional Redis and NATS adapters, and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	estimator, err := distance.NewEstimator(cfg.DistanceEstimator)
	if err != nil {
		log.Fatal(err)
	}

	conn, dialect, err := db.OpenStore(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}
	models := repositories.NewSQLModelRepository(conn, dialect)
	observations := repositories.NewSQLObservationRepository(conn, dialect)

	collector := metrics.NewCollector()

	// The predictor is fully built before the listener opens, so no request
	// ever sees a half-initialized model.
	state, err := loadOrTrain(ctx, cfg, models, observations, estimator)
	if err != nil {
		log.Fatal(err)
	}
	p := predictor.New(state, predictor.WithObserver(collector))
	collector.SetModelLoaded(p.Available())
	if u, ok := p.State().(predictor.Unavailable); ok {
		log.Printf("predictor: serving fallback formula reason=%q", u.Reason)
	} else {
		log.Printf("predictor: serving model version=%s", p.Version())
	}

	deps := api.Deps{
		Holder:    predictor.NewHolder(p),
		Estimator: estimator,
		ModelRepo: models,
		CacheTTL:  cfg.RouteCacheTTL,
		Metrics:   collector,
		Location:  cfg.Location,
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, route cache disabled: addr=%s err=%v", cfg.RedisAddr, err)
		} else {
			deps.Cache = cache.NewRedisRouteCache(client, cache.DefaultPrefix)
			log.Printf("route cache enabled: addr=%s ttl=%s", cfg.RedisAddr, cfg.RouteCacheTTL)
		}
	}

	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, collector)
		if err != nil {
			log.Printf("nats unavailable, route events disabled: err=%v", err)
		} else {
			defer pub.Close()
			deps.Publisher = pub
		}
	}

	router := api.NewRouter(deps)

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

// loadOrTrain returns the latest stored model. When none is usable and
// AUTO_TRAIN is on, it fits one and stores it.
func loadOrTrain(
	ctx context.Context,
	cfg *config.Config,
	models ports.ModelRepository,
	observations ports.ObservationRepository,
	estimator ports.DistanceEstimator,
) (predictor.State, error) {
	state, err := models.LoadLatest(ctx)
	if err != nil {
		return nil, err
	}
	u, unavailable := state.(predictor.Unavailable)
	if !unavailable || !cfg.AutoTrain {
		return state, nil
	}

	log.Printf("predictor: no usable stored model (%s), training", u.Reason)
	trained, _, err := training.Train(ctx, training.Options{
		Samples: cfg.TrainSamples,
		Seed:    cfg.TrainSeed,
	}, observations, estimator)
	if err != nil {
		log.Printf("predictor: training failed, using fallback formula: err=%v", err)
		return predictor.Unavailable{Reason: err.Error()}, nil
	}

	if err := models.SaveModel(ctx, trained); err != nil {
		log.Printf("predictor: could not store trained model: err=%v", err)
	}
	return trained, nil
}
