package cmd

import (
	"context"
	"errors"
	"fmt"

	"photo-points-backend/internal/config"
	"photo-points-backend/internal/labels"
	"photo-points-backend/internal/places"
	"photo-points-backend/internal/push"
	"photo-points-backend/internal/repository"
	"photo-points-backend/internal/search"
	"photo-points-backend/internal/services"
	"photo-points-backend/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// app holds every long-lived connection and service
type app struct {
	cfg   *config.Config
	mongo *repository.MongoStore
	db    *pgxpool.Pool
	redis *redis.Client

	users       *services.UserService
	photos      *services.PhotoService
	search      *services.SearchService
	ledger      *services.LedgerCalculator
	redemptions *services.RedemptionService
	petitions   *services.PetitionService
	enrichment  *services.EnrichmentJob
	indexer     *services.IndexMaintenance
	views       *services.ViewQueue
	hub         *services.WSHub
}

// newApp connects to every backing store and wires the services
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	mongoStore, err := repository.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout)
	if err != nil {
		return nil, err
	}
	a.mongo = mongoStore
	log.Info().Str("database", cfg.Mongo.Database).Msg("Document store connection established")

	db, err := repository.NewPostgresPool(ctx, cfg.Database.DSN())
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	a.db = db
	log.Info().Msg("Database connection established")

	a.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	awsCfg, err := cfg.AWS.SDKConfig(ctx)
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var pusher services.PushSender
	if cfg.Push.Enabled() {
		apns, err := push.NewAPNs(cfg.Push.CertFile, cfg.Push.CertPassword, cfg.Push.Topic, cfg.Push.Production)
		if err != nil {
			a.close(context.Background())
			return nil, err
		}
		pusher = apns
	} else {
		log.Warn().Msg("Push certificate not configured, offline like notifications disabled")
	}

	// Stores
	userRepo := repository.NewUserRepository(mongoStore.DB)
	photoRepo := repository.NewPhotoRepository(mongoStore.DB)
	offerRepo := repository.NewOfferRepository(db, cfg.Database.Timeout)
	locationRepo := repository.NewLocationRepository(db, cfg.Database.Timeout)
	redemptionRepo := repository.NewRedemptionRepository(db, cfg.Database.Timeout)
	petitionRepo := repository.NewPetitionRepository(db, cfg.Database.Timeout)
	historyRepo := repository.NewHistoryRepository(db, cfg.Database.Timeout)

	blobs := storage.NewS3Store(awsCfg, cfg.AWS.S3Bucket, cfg.AWS.Endpoint)
	detector := labels.NewDetector(awsCfg, cfg.AWS.S3Bucket)
	index := search.NewClient(awsCfg, cfg.Search.Endpoint, cfg.Search.SortExpression)
	placeClient, err := places.NewClient(cfg.Places.BaseURL, cfg.Places.APIKey, cfg.Places.RequestsPerSecond)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	// Services
	a.hub = services.NewWSHub()
	a.views = services.NewViewQueue(a.redis, photoRepo)
	notifier := services.NewNotifier(a.hub, pusher, userRepo)

	a.users = services.NewUserService(userRepo, historyRepo, cfg.Session)
	a.photos = services.NewPhotoService(photoRepo, userRepo, historyRepo, blobs, detector, index, notifier)
	a.search = services.NewSearchService(index, a.views, cfg.Search.MaxPageSize)
	a.ledger = services.NewLedgerCalculator(offerRepo, locationRepo, photoRepo, redemptionRepo)
	a.redemptions = services.NewRedemptionService(offerRepo, photoRepo, redemptionRepo, a.ledger)
	a.petitions = services.NewPetitionService(userRepo, petitionRepo)
	a.enrichment = services.NewEnrichmentJob(index, locationRepo, offerRepo, placeClient, places.IsTransient, services.RetryPolicy{
		MaxRetries:     cfg.Jobs.MaxRetries,
		BackoffInitial: cfg.Jobs.BackoffInitial,
		BackoffMax:     cfg.Jobs.BackoffMax,
	})
	a.indexer = services.NewIndexMaintenance(photoRepo, index)

	return a, nil
}

// ready pings the stores the API cannot serve without
func (a *app) ready(ctx context.Context) error {
	if err := a.db.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := a.mongo.Client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	return nil
}

// close releases every connection that was opened
func (a *app) close(ctx context.Context) {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.mongo != nil {
		errs = append(errs, a.mongo.Close(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		log.Error().Err(err).Msg("Failed to close connections")
	}
}
