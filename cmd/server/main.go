// Command server runs the mintgate API: participant registry, phase
// allocation, minting and token ownership behind one HTTP surface.
//
// Stores are selected by configuration. With MINTGATE_POSTGRES_URL set the
// registry and token ledger persist in Postgres; otherwise everything runs
// in memory, which is how the test environments use it.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	allochandler "mintgate/internal/allocation/handler"
	allocservice "mintgate/internal/allocation/service"
	allocstore "mintgate/internal/allocation/store"
	identityhandler "mintgate/internal/identity/handler"
	identityservice "mintgate/internal/identity/service"
	identitystore "mintgate/internal/identity/store"
	issuancehandler "mintgate/internal/issuance/handler"
	issuanceservice "mintgate/internal/issuance/service"
	ownershiphandler "mintgate/internal/ownership/handler"
	"mintgate/internal/ownership/ports"
	ownershipstore "mintgate/internal/ownership/store"
	"mintgate/internal/platform/config"
	"mintgate/internal/platform/db"
	"mintgate/internal/platform/httpserver"
	"mintgate/internal/platform/logger"
	"mintgate/internal/platform/metrics"
	"mintgate/internal/platform/middleware"
	platformredis "mintgate/internal/platform/redis"
	httptransport "mintgate/internal/transport/http"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/events"
	"mintgate/pkg/platform/events/kafka"
	"mintgate/pkg/platform/events/redispub"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	owner, err := domain.ParseAddress(cfg.OwnerAddress)
	if err != nil {
		log.Error("invalid owner address", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Event pipeline: services emit into a buffered channel, a worker drains
	// it to whichever downstream sinks are configured.
	var downstream events.Multi
	var health []func(context.Context) error

	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("connecting to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		downstream = append(downstream, redispub.New(redisClient.Client, "mintgate.events"))
		health = append(health, redisClient.Health)
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connecting to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaPub.Close()
		downstream = append(downstream, kafkaPub)
	}

	channel := events.NewChannelSink(1024, log)

	ledger, err := allocstore.NewLedger(cfg.MaxMintingLimit, cfg.PlatformMintingLimit)
	if err != nil {
		log.Error("building allocation ledger", "error", err)
		os.Exit(1)
	}

	var identityStore identityservice.Store
	var registry ports.Registry

	if cfg.PostgresURL != "" {
		conn, err := db.Open(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("connecting to postgres", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		if err := db.Migrate(ctx, conn); err != nil {
			log.Error("running migrations", "error", err)
			os.Exit(1)
		}
		health = append(health, conn.PingContext)

		identityStore = identitystore.NewPostgres(conn)
		registry, err = ownershipstore.NewPostgres(conn, ledger,
			ownershipstore.WithPostgresLogger(log),
			ownershipstore.WithPostgresEventSink(channel))
		if err != nil {
			log.Error("building token registry", "error", err)
			os.Exit(1)
		}
	} else {
		identityStore = identitystore.NewInMemory()
		registry, err = ownershipstore.NewInMemory(ledger,
			ownershipstore.WithLogger(log),
			ownershipstore.WithEventSink(channel))
		if err != nil {
			log.Error("building token registry", "error", err)
			os.Exit(1)
		}
	}

	identitySvc, err := identityservice.New(identityStore, registry, owner,
		identityservice.WithLogger(log),
		identityservice.WithEventSink(channel),
		identityservice.WithMetrics(m))
	if err != nil {
		log.Error("building identity service", "error", err)
		os.Exit(1)
	}

	allocSvc, err := allocservice.New(ledger, owner,
		allocservice.WithLogger(log),
		allocservice.WithEventSink(channel),
		allocservice.WithMetrics(m))
	if err != nil {
		log.Error("building allocation service", "error", err)
		os.Exit(1)
	}

	issuanceSvc, err := issuanceservice.New(identitySvc, ledger, registry,
		issuanceservice.WithLogger(log),
		issuanceservice.WithEventSink(channel),
		issuanceservice.WithMetrics(m))
	if err != nil {
		log.Error("building issuance service", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Validator:  middleware.NewHMACValidator(cfg.JWTSigningKey),
		AdminToken: cfg.AdminToken,
		Identity:   identityhandler.New(identitySvc, owner, log),
		Allocation: allochandler.New(allocSvc, owner, log),
		Ownership:  ownershiphandler.New(registry, log),
		Issuance:   issuancehandler.New(issuanceSvc, log),
		Health: func(ctx context.Context) error {
			for _, check := range health {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := events.NewWorker(channel, downstream).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		log.Info("starting mintgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
