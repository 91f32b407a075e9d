package database

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Name of the Mongo database every repository reads from.
const Name = "docpdf"

// Service hands out the backing clients and answers health probes for all
// three backends. Qdrant has no client object here; it is only probed over
// HTTP for the health endpoint.
type Service interface {
	Health(ctx context.Context) map[string]bool
	Client() *mongo.Client
	Redis() *redis.Client
	Close(ctx context.Context) error
}

type service struct {
	db        *mongo.Client
	redis     *redis.Client
	qdrantURL string
	http      *http.Client
}

func New() Service {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal().Msg("MONGO_URI environment variable not set")
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal().Err(err).Str("redis_url", redisURL).Msg("Invalid REDIS_URL")
	}

	qdrantURL := os.Getenv("QDRANT_URL")
	if qdrantURL == "" {
		qdrantURL = "http://localhost:6333"
	}

	return &service{
		db:        client,
		redis:     redis.NewClient(redisOpts),
		qdrantURL: qdrantURL,
		http:      &http.Client{Timeout: 2 * time.Second},
	}
}

// Health pings each backend independently so a single dead dependency
// degrades the report instead of failing it.
func (s *service) Health(ctx context.Context) map[string]bool {
	health := map[string]bool{
		"mongodb": false,
		"redis":   false,
		"qdrant":  false,
	}

	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	if err := s.db.Ping(pingCtx, nil); err != nil {
		log.Error().Err(err).Msg("MongoDB health check failed")
	} else {
		health["mongodb"] = true
	}

	if err := s.redis.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("Redis health check failed")
	} else {
		health["redis"] = true
	}

	if err := s.pingQdrant(ctx); err != nil {
		log.Error().Err(err).Msg("Qdrant health check failed")
	} else {
		health["qdrant"] = true
	}

	return health
}

func (s *service) pingQdrant(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.qdrantURL+"/collections", nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &probeError{url: s.qdrantURL, status: resp.StatusCode}
	}
	return nil
}

type probeError struct {
	url    string
	status int
}

func (e *probeError) Error() string {
	return "qdrant probe returned status " + http.StatusText(e.status)
}

func (s *service) Client() *mongo.Client {
	return s.db
}

func (s *service) Redis() *redis.Client {
	return s.redis
}

func (s *service) Close(ctx context.Context) error {
	if err := s.redis.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis client")
	}
	return s.db.Disconnect(ctx)
}
