package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/Alltrendsfy/zenith-sub000/src/config"
	"github.com/Alltrendsfy/zenith-sub000/src/database"
	"github.com/Alltrendsfy/zenith-sub000/src/handlers"
	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
	"github.com/Alltrendsfy/zenith-sub000/src/security"
	"github.com/Alltrendsfy/zenith-sub000/src/services"
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
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Ledger backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.CacheExpiration, config.Cfg.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	accountService := services.NewAccountService()
	obligationService := services.NewObligationService()
	recurrenceService := services.NewRecurrenceService()
	settlementService := services.NewSettlementService(reportCache)
	transferService := services.NewTransferService(reportCache)
	statementService := services.NewStatementService(reportCache)
	allocationService := services.NewAllocationService()
	costCenterService := services.NewCostCenterService()

	userHandler := handlers.NewUserHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	statementHandler := handlers.NewStatementHandler(statementService)
	transferHandler := handlers.NewTransferHandler(transferService)
	costCenterHandler := handlers.NewCostCenterHandler(costCenterService)
	payableHandler := handlers.NewObligationHandler(models.TypePayable, obligationService, recurrenceService, settlementService)
	receivableHandler := handlers.NewObligationHandler(models.TypeReceivable, obligationService, recurrenceService, settlementService)
	payableAllocations := handlers.NewAllocationHandler(models.TypePayable, allocationService)
	receivableAllocations := handlers.NewAllocationHandler(models.TypeReceivable, allocationService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/auth/register", userHandler.RegisterUserHandler)
	apiRouter.HandleFunc("POST /api/auth/login", userHandler.LoginUserHandler)

	auth := userHandler.AuthMiddleware

	apiRouter.Handle("POST /api/accounts", auth(accountHandler.HandleCreateAccount))
	apiRouter.Handle("GET /api/accounts", auth(accountHandler.HandleListAccounts))
	apiRouter.Handle("GET /api/accounts/{id}", auth(accountHandler.HandleGetAccount))
	apiRouter.Handle("PUT /api/accounts/{id}", auth(accountHandler.HandleRenameAccount))
	apiRouter.Handle("DELETE /api/accounts/{id}", auth(accountHandler.HandleDeleteAccount))
	apiRouter.Handle("GET /api/accounts/{id}/statement", auth(statementHandler.HandleGetStatement))

	apiRouter.Handle("POST /api/transfers", auth(transferHandler.HandleCreateTransfer))
	apiRouter.Handle("GET /api/transfers", auth(transferHandler.HandleListTransfers))

	apiRouter.Handle("POST /api/cost-centers", auth(costCenterHandler.HandleCreateCostCenter))
	apiRouter.Handle("GET /api/cost-centers", auth(costCenterHandler.HandleListCostCenters))
	apiRouter.Handle("PUT /api/cost-centers/{id}", auth(costCenterHandler.HandleUpdateCostCenter))
	apiRouter.Handle("DELETE /api/cost-centers/{id}", auth(costCenterHandler.HandleDeleteCostCenter))

	registerObligationRoutes(apiRouter, "payables", payableHandler, payableAllocations, auth)
	registerObligationRoutes(apiRouter, "receivables", receivableHandler, receivableAllocations, auth)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Ledger backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}

// registerObligationRoutes wires the shared route family for one obligation
// type: payables and receivables are structurally identical.
func registerObligationRoutes(
	mux *http.ServeMux,
	prefix string,
	h *handlers.ObligationHandler,
	a *handlers.AllocationHandler,
	auth func(http.HandlerFunc) http.HandlerFunc,
) {
	mux.Handle("POST /api/"+prefix, auth(h.HandleCreate))
	mux.Handle("GET /api/"+prefix, auth(h.HandleList))
	mux.Handle("GET /api/"+prefix+"/{id}", auth(h.HandleGet))
	mux.Handle("PUT /api/"+prefix+"/{id}", auth(h.HandleUpdate))
	mux.Handle("DELETE /api/"+prefix+"/{id}", auth(h.HandleDelete))
	mux.Handle("POST /api/"+prefix+"/{id}/cancel", auth(h.HandleCancel))
	mux.Handle("POST /api/"+prefix+"/{id}/settle", auth(h.HandleSettle))
	mux.Handle("GET /api/"+prefix+"/{id}/payments", auth(h.HandleListPayments))
	mux.Handle("GET /api/"+prefix+"/{id}/allocations", auth(a.HandleGetAllocations))
	mux.Handle("PUT /api/"+prefix+"/{id}/allocations", auth(a.HandleReplaceAllocations))
}
