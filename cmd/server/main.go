package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chatline/auth"
	"chatline/domain"
	"chatline/infrastructure/web"
	"chatline/internal"
	"chatline/moderation"
	"chatline/observability"
	"chatline/repositories"
	"chatline/search"
	"chatline/services"

	env "github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper. Its only responsibility is
	// to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. The pattern keeps every defer (database
// close, index flush) on the path out, and keeps initialization testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	mode, err := config.DeliveryMode()
	if err != nil {
		return exitConfig, err
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := internal.GetLoggerFromString(config.LogLevel)

	// 2. Durable store (BadgerDB). An unreadable or corrupt store refuses
	// to start instead of silently serving from an empty reinitialization;
	// an absent directory is the bootstrap case and is simply created.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Full-text index (Bluge)
	index, err := search.Open(config.BlugeFilepath, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = index.Close()
	}()

	// 4. Repositories
	userRepository, err := repositories.NewUserRepository(db)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = userRepository.Close() }()

	limit := config.LimitMessages
	if limit == nil && mode == domain.ModeBroadcast {
		// The broadcast variant caps its global feed by default.
		limit = lo.ToPtr(100)
	}
	messageRepository := repositories.NewMessageRepository(db, logger, limit)

	// 5. Domain collaborators
	moderator, err := moderation.NewModerator(config.CensoredWordList(), charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator init failed: %w", err)
	}

	monitor, err := observability.NewMonitor(logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("monitor init failed: %w", err)
	}

	tokens := auth.NewTokenIssuer(config.AuthSecretKey, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, tokens, monitor)
	chatService := services.NewChatService(
		userRepository, messageRepository, &moderator, index, monitor, mode, logger)

	// 6. HTTP adapter
	authHandler := &web.AuthHandler{Auth: authService, SessionTT: config.AuthTokenDuration}
	chatHandler := &web.ChatHandler{
		Chat:          chatService,
		Monitor:       monitor,
		MaxBodyLength: config.MaxContentLength,
		WriteTimeout:  config.WriteTimeout,
	}
	router := web.NewRouter(authHandler, chatHandler, tokens, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: router,
	}

	// 7. Lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", server.Addr, "mode", string(mode))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitRuntime, err
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped cleanly")
	return exitOK, nil
}
