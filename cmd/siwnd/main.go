package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/walletgate/siwn/adapters/events"
	"github.com/walletgate/siwn/adapters/identity"
	"github.com/walletgate/siwn/adapters/store"
	"github.com/walletgate/siwn/config"
	"github.com/walletgate/siwn/ports"
	"github.com/walletgate/siwn/service"
	"github.com/walletgate/siwn/transport/http"
)

func main() {
	ctx := context.Background()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	}

	var pgStore *store.PostgresStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		pgStore = store.NewPostgresStore(pool)
	}

	// Nonce store preference: redis, then postgres, then memory.
	var nonces ports.NonceStore
	switch {
	case redisClient != nil:
		nonces = store.NewRedisNonceStore(redisClient)
	case pgStore != nil:
		nonces = pgStore
	default:
		log.Println("No REDIS_URL or DATABASE_URL set, using in-memory nonce store")
		nonces = store.NewMemoryNonceStore(0)
	}

	var wallets ports.WalletRepository
	if pgStore != nil {
		wallets = pgStore
		if redisClient != nil {
			wallets = store.NewCachedWalletRepository(wallets, redisClient)
		}
	} else {
		log.Println("No DATABASE_URL set, wallet mappings will not survive restarts")
		wallets = store.NewMemoryWalletRepository()
	}

	var provider ports.IdentityProvider
	var verifier ports.TokenVerifier
	if cfg.GoTrueURL != "" {
		provider = identity.NewGoTrueProvider(cfg.GoTrueURL, cfg.GoTrueServiceKey)
	} else {
		log.Println("No GOTRUE_URL set, using in-process identity provider")
		signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			log.Fatalf("Failed to generate signing key: %v", err)
		}
		local := identity.NewLocalProvider(signKey)
		provider = local
		verifier = local
	}

	var eventPub ports.EventPublisher
	if redisClient != nil {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("Failed to create event publisher: %v", err)
		}
		eventPub = events.NewWatermillPublisher(publisher)
	}

	authService := service.NewAuthService(cfg.AllowedDomains, cfg.Secret, nonces, wallets, provider, eventPub)

	router := http.SetupRouter(authService, verifier)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
