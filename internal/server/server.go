package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"docpdf/internal/database"
	"docpdf/internal/repositories"
	"docpdf/internal/services"
)

type Server struct {
	port              int
	httpServer        *http.Server
	db                database.Service
	userService       services.UserService
	collectionService services.CollectionService
	documentService   services.DocumentService
	chatService       services.ChatService
}

func NewServer() *Server {
	portStr := os.Getenv("PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Warn().Str("port", portStr).Msg("Invalid PORT environment variable. Using default 8080.")
		port = 8080
	}

	db := database.New()

	userRepo := repositories.NewUserRepository(db)
	collectionRepo := repositories.NewCollectionRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	chatRepo := repositories.NewChatRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create user indexes")
	}
	if err := collectionRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create collection indexes")
	}

	s := &Server{
		port:              port,
		db:                db,
		userService:       services.NewUserService(userRepo),
		collectionService: services.NewCollectionService(collectionRepo, documentRepo, userRepo, db.Redis()),
		documentService:   services.NewDocumentService(documentRepo, collectionRepo, userRepo),
		chatService:       services.NewChatService(chatRepo, documentRepo),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}
	if err := s.db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close database connections")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
