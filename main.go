package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/username/pitfolio/backend/src/config"
	"github.com/username/pitfolio/backend/src/database"
	"github.com/username/pitfolio/backend/src/handlers"
	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/parsers"
	"github.com/username/pitfolio/backend/src/processors"
	"github.com/username/pitfolio/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Pitfolio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)

	logger.L.Info("Initializing rate cache...")
	rateCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	statementParser, err := parsers.GetParser("ibkr")
	if err != nil {
		logger.L.Error("Failed to initialize statement parser", "error", err)
		os.Exit(1)
	}
	dividendProcessor := processors.NewDividendProcessor()
	currencyService := services.NewCurrencyService(config.Cfg.NBPAPIBaseURL, rateCache, database.NewRateStore())
	statementService := services.NewStatementService(
		statementParser, dividendProcessor, currencyService, config.Cfg.SourceCurrency, config.Cfg.LocalCurrency,
	)
	statementHandler := handlers.NewStatementHandler(statementService)

	logger.L.Info("Configuring routes...")
	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/api/health", statementHandler.HandleHealth)
	r.Post("/api/statements/upload", statementHandler.HandleUpload)

	addr := ":" + config.Cfg.Port
	logger.L.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.L.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
