package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"vendibook/internal/app/commands"
	availabilityapp "vendibook/internal/app/handlers/availability"
	checkoutapp "vendibook/internal/app/handlers/checkout"
	listingapp "vendibook/internal/app/handlers/listings"
	quoteapp "vendibook/internal/app/handlers/quote"
	"vendibook/internal/app/middleware"
	appoutbox "vendibook/internal/app/outbox"
	"vendibook/internal/app/policies"
	"vendibook/internal/app/queries"
	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/geo"
	infrakafka "vendibook/internal/infra/broker/kafka"
	"vendibook/internal/infra/config"
	inframongo "vendibook/internal/infra/db/mongo"
	"vendibook/internal/infra/geocode"
	ginserver "vendibook/internal/infra/http/gin"
	"vendibook/internal/infra/obs"
	infraoutbox "vendibook/internal/infra/outbox"
	"vendibook/internal/infra/payments"
	"vendibook/internal/infra/storage/memory"
	infraredis "vendibook/internal/infra/storage/redis"
	"vendibook/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	fixturesPath := getenv("LISTINGS_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = defaultListingFixturesPath()
	}
	if err := app.loadListingFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	listingsRepo listings.Repository
	outboxWorker *infraoutbox.Worker
	ready        func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var app application
	app.ready = func() error { return nil }

	var listingsRepo listings.Repository
	var idStore middleware.IdempotencyStore
	var box appoutbox.Outbox

	switch cfg.StoreMode {
	case "mongo":
		client, err := inframongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		listingsRepo = inframongo.NewListingRepository(client.DB)
		idStore = inframongo.NewIdempotencyStore(client.DB)
		outboxStore := infraoutbox.NewStore(client.DB)
		box = outboxStore
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		if len(cfg.KafkaBrokers) > 0 {
			producer, err := infrakafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka connect: %w", err)
			}
			app.outboxWorker = &infraoutbox.Worker{
				Store:       outboxStore,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("KAFKA_BROKERS not set, outbox events will accumulate unsent")
		}
	default:
		listingsRepo = memory.NewListingRepository()
		idStore = memory.NewIdempotencyStore()
		box = memory.NewOutbox()
	}

	var sessions policies.SessionStore
	if cfg.SessionsMode == "redis" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		sessions = infraredis.NewSessionStore(client, cfg.SessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var geocoder policies.GeocoderPort
	if cfg.MapsAPIKey != "" {
		svc, err := geocode.NewService(cfg.MapsAPIKey)
		if err != nil {
			return application{}, fmt.Errorf("geocoder init: %w", err)
		}
		geocoder = svc
	} else {
		logger.Warn("MAPS_API_KEY not set, delivery address lookups will fail")
	}

	paymentsClient := &payments.Client{
		HTTP:     &http.Client{Timeout: cfg.PaymentsTimeout},
		Endpoint: cfg.PaymentsURL,
		APIKey:   cfg.PaymentsAPIKey,
		Logger:   logger,
	}

	var uploader policies.UploaderPort
	if s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger); err != nil {
		logger.Warn("photo storage unavailable", "error", err)
	} else {
		uploader = s3Client
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, checkoutapp.StartCheckoutCommand{}.Key(), &checkoutapp.StartCheckoutHandler{
		Listings: listingsRepo, Sessions: sessions, Geocoder: geocoder, Payments: paymentsClient,
	})
	commands.RegisterHandler(commandBus, checkoutapp.UpdateSelectionCommand{}.Key(), &checkoutapp.UpdateSelectionHandler{
		Listings: listingsRepo, Sessions: sessions, Geocoder: geocoder, Payments: paymentsClient,
	})
	commands.RegisterHandler(commandBus, checkoutapp.CreateCheckoutCommand{}.Key(), &checkoutapp.CreateCheckoutHandler{
		Listings: listingsRepo, Sessions: sessions, Geocoder: geocoder, Payments: paymentsClient,
		Outbox: box, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.CreateHostListingCommand{}.Key(), &listingapp.CreateHostListingHandler{
		Listings: listingsRepo, Outbox: box, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, listingapp.PublishHostListingCommand{}.Key(), &listingapp.PublishHostListingHandler{
		Listings: listingsRepo, Outbox: box, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, listingapp.SuspendHostListingCommand{}.Key(), &listingapp.SuspendHostListingHandler{
		Listings: listingsRepo, Outbox: box, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.UpdatePricingCommand{}.Key(), &listingapp.UpdatePricingHandler{
		Listings: listingsRepo, Outbox: box, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.UploadHostListingPhotoCommand{}.Key(), &listingapp.UploadHostListingPhotoHandler{
		Listings: listingsRepo, Uploader: uploader, Logger: logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, quoteapp.GetQuoteQuery{}.Key(), &quoteapp.GetQuoteHandler{
		Listings: listingsRepo, Geocoder: geocoder,
	})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		Listings: listingsRepo,
	})
	queries.RegisterHandler(queryBus, availabilityapp.CheckRangeQuery{}.Key(), &availabilityapp.CheckRangeHandler{
		Listings: listingsRepo,
	})
	queries.RegisterHandler(queryBus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{
		Listings: listingsRepo,
	})
	queries.RegisterHandler(queryBus, listingapp.ListHostListingsQuery{}.Key(), &listingapp.ListHostListingsHandler{
		Listings: listingsRepo,
	})
	queries.RegisterHandler(queryBus, checkoutapp.GetCheckoutStateQuery{}.Key(), &checkoutapp.GetCheckoutStateHandler{
		Listings: listingsRepo, Sessions: sessions, Geocoder: geocoder, Payments: paymentsClient,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(idStore, nil),
		middleware.OutboxFlush(box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.listingsRepo = listingsRepo
	app.handlers = ginserver.Handlers{
		Listing: ginserver.ListingHandler{
			Queries: queryBusWithMiddleware,
		},
		HostListing: ginserver.HostListingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Checkout: ginserver.CheckoutHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
	}
	return app, nil
}

func (a application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	for _, fx := range fixtures {
		rates, policy, window := listings.NormalizeRecord(fx.Record)
		params := listings.CreateParams{
			ID:          listings.ListingID(fx.ID),
			Host:        listings.HostID(fx.Host),
			Title:       fx.Title,
			Description: fx.Description,
			Kind:        listings.Kind(fx.Kind),
			Address:     fx.Address,
			Location:    geo.Coordinate{Lat: fx.Lat, Lon: fx.Lon},
			Rates:       rates,
			Delivery:    policy,
			Window:      window,
			Now:         now,
		}
		listing, err := listings.NewListing(params)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := listing.Activate(now); err != nil {
			logger.Error("fixture activation failed", "listing_id", fx.ID, "error", err)
			continue
		}
		listing.ClearEvents()
		if err := a.listingsRepo.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID          string         `json:"id"`
	Host        string         `json:"host"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Kind        string         `json:"kind"`
	Address     string         `json:"address"`
	Lat         float64        `json:"lat"`
	Lon         float64        `json:"lon"`
	Record      map[string]any `json:"record"`
}

func defaultListingFixturesPath() string {
	return filepath.Join("data", "listings.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
