package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/readswap/readswap/internal/config"
    "github.com/readswap/readswap/internal/database"
    "github.com/readswap/readswap/internal/handler"
    "github.com/readswap/readswap/internal/logging"
    "github.com/readswap/readswap/internal/middleware"
    "github.com/readswap/readswap/internal/queue"
    "github.com/readswap/readswap/internal/repository"
    "github.com/readswap/readswap/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    logger, logCloser, err := logging.New(cfg.Logging, cfg.Env)
    if err != nil {
        log.Fatalf("init logger: %v", err)
    }
    if logCloser != nil {
        defer func() { _ = logCloser.Close() }()
    }

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        logger.Fatal().Err(err).Msg("open database")
    }
    defer func() { _ = db.Close() }()

    // Redis is optional: without it caching and rate limiting degrade
    // to pass-through middleware.
    rdb := config.NewRedisClient()
    if rdb == nil {
        logger.Warn().Msg("redis unavailable, cache and rate limit disabled")
    }

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    books := repository.NewBookRepo(db)
    loans := repository.NewLoanRepo(db)

    authHandler := handler.NewAuthHandler(cfg, users, tokens)
    bookHandler := handler.NewBookHandler(books)
    loanHandler := handler.NewLoanHandler(loans, books, logger)

    e := echo.New()
    e.HideBanner = true
    e.Use(middleware.Observe(logger))
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterBooks(e, bookHandler, cfg.JWTSecret, config.LoadCacheConfig(), rdb)
    router.RegisterLoans(e, loanHandler, cfg.JWTSecret)

    // Background consumer appends approved loans to logs/loans.log.
    go func() {
        if err := queue.StartLoanConsumer(); err != nil {
            logger.Error().Err(err).Msg("loan consumer stopped")
        }
    }()

    addr := ":" + cfg.Port
    logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
    if err := e.Start(addr); err != nil {
        logger.Fatal().Err(err).Msg("server stopped")
    }
}
