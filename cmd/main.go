package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/dreamcatcher/internal/ai"
	"github.com/Vovarama1992/dreamcatcher/internal/config"
	"github.com/Vovarama1992/dreamcatcher/internal/delivery"
	"github.com/Vovarama1992/dreamcatcher/internal/domain"
	"github.com/Vovarama1992/dreamcatcher/internal/infra"
	"github.com/Vovarama1992/dreamcatcher/internal/notificator"
	"github.com/Vovarama1992/dreamcatcher/internal/prompts"
	"github.com/Vovarama1992/dreamcatcher/internal/recorder"
	"github.com/Vovarama1992/dreamcatcher/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const serviceName = "dreamcatcher"

func main() {

	// =========================================================================
	// ENV / DB INIT
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}
	if err := infra.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	baseLogger = baseLogger.With(zap.String("service", serviceName))
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	s3Client, err := infra.NewS3Client(ctx, cfg.S3)
	if err != nil {
		log.Fatalf("failed to init s3: %v", err)
	}

	// клиент Google живёт дольше init-контекста
	transcriber, closeTranscriber, err := ai.NewTranscriber(context.Background(), cfg.Transcriber)
	if err != nil {
		log.Fatalf("failed to init transcriber: %v", err)
	}
	defer closeTranscriber()

	gemini := ai.NewGeminiClient(cfg.Gemini)

	newBuffer := func(string) recorder.ChunkBuffer { return recorder.NewMemoryBuffer() }
	if cfg.RecorderBuffer == "redis" {
		rdb, err := recorder.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("failed to init redis: %v", err)
		}
		defer rdb.Close()
		newBuffer = func(ownerID string) recorder.ChunkBuffer {
			return recorder.NewRedisBuffer(rdb, ownerID)
		}
	}

	// =========================================================================
	// REPOSITORIES
	// =========================================================================

	authRepo := infra.NewAuthRepo(db)
	dreamRepo := infra.NewDreamRepo(db)
	promptRepo := prompts.NewRepo(db)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var alertInfra notificator.Notificator = notificator.NewLogInfra(baseLogger)
	if cfg.AlertBotToken != "" {
		tg, err := notificator.NewTelegramInfra(cfg.AlertBotToken, cfg.AlertChatIDs)
		if err != nil {
			log.Fatalf("failed to init alert bot: %v", err)
		}
		alertInfra = tg
	}
	notifier := notificator.NewService(alertInfra, baseLogger)

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	authService := domain.NewAuthService(authRepo, infra.NewLogMailer(baseLogger), cfg.PublicBaseURL, cfg.SessionTTL)
	dreamService := domain.NewDreamService(dreamRepo)
	s3Service := domain.NewS3Service(s3Client)
	promptService := prompts.NewService(promptRepo)
	aiService := ai.NewAiService(gemini, promptService, baseLogger)

	recorders := recorder.NewManager(newBuffer, recorder.MaxDuration, baseLogger)

	pipeline := workflow.NewPipeline(
		s3Service,
		transcriber,
		aiService,
		dreamService,
		notifier,
		baseLogger,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	delivery.RegisterRoutes(
		r,
		delivery.NewAuthHandler(authService, zl),
		delivery.NewDreamHandler(dreamService, zl),
		delivery.NewRecorderHandler(recorders, pipeline, zl),
		delivery.NewShellHandler(authService, dreamService, recorders, zl),
		prompts.NewHandler(promptService),
		authService,
		cfg.AdminEmails,
	)

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
			}
			n, err := authRepo.CleanupSessions(runCtx, time.Now())
			if err != nil {
				zl.Log(logger.LogEntry{Level: "error", Message: "[cleanup-sessions] failed", Service: serviceName, Error: err})
				continue
			}
			if n > 0 {
				baseLogger.Info("[cleanup-sessions] removed expired sessions", zap.Int64("count", n))
			}
		}
	}()

	// =========================================================================
	// START SERVER
	// =========================================================================

	// без ReadTimeout: запись идёт потоком до 30 секунд
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + srv.Addr,
		Service: serviceName,
	})

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
