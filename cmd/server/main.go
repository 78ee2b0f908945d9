package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hearthside/homeschool-hub/internal/app"
	"github.com/hearthside/homeschool-hub/internal/auth"
	"github.com/hearthside/homeschool-hub/internal/books"
	"github.com/hearthside/homeschool-hub/internal/config"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/jobs"
	"github.com/hearthside/homeschool-hub/internal/logging"
	"github.com/hearthside/homeschool-hub/internal/notify"
	"github.com/hearthside/homeschool-hub/internal/observability"
	"github.com/hearthside/homeschool-hub/internal/quizgen"
	"github.com/hearthside/homeschool-hub/internal/realtime"
	"github.com/hearthside/homeschool-hub/internal/roles"
	"github.com/hearthside/homeschool-hub/internal/web"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()
	logger := lg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "homeschool-hub")
	if err != nil {
		logger.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("Ошибка подключения к БД", "err", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Fatalw("Миграция не удалась", "err", err)
	}

	seedCtx, cancel := ctxutil.WithDBTimeout(ctx)
	if err := db.EnsureDefaultRoles(seedCtx, database, cfg.PrimaryAdmin); err != nil {
		cancel()
		logger.Fatalw("Ошибка сидирования ролей", "err", err)
	}
	cancel()

	hub := realtime.NewHub()
	rules := roles.Rules{PrimaryAdmin: cfg.PrimaryAdmin}

	anthro := quizgen.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AIModel)
	gen := quizgen.NewService(database, anthro, rules, hub, logger, cfg.AIModel, cfg.AIDailyLimit)

	// Телеграм-алерты необязательны: без токена просто не подключаются
	tg, err := notify.NewTelegram(cfg.BotToken, cfg.AdminChatIDs)
	if err != nil {
		logger.Warnw("telegram notifier disabled", "err", err)
	}
	if tg != nil {
		gen.SetNotifier(tg)
		logger.Infow("🔔 telegram alerts enabled", "chats", len(cfg.AdminChatIDs))
	}

	jwtMgr := auth.NewManager(cfg.JWTSecret, cfg.JWTLifetime)
	verifier := &auth.GoogleVerifier{ClientID: cfg.GoogleClientID}
	booksClient := books.NewClient(cfg.BooksAPIKey)

	srv := web.NewServer(database, logger, rules, jwtMgr, verifier, gen, booksClient, hub)
	app.StartHTTP(ctx, cfg.HTTPAddr, database, srv.Router())
	logger.Infow("🚀 сервер запущен", "addr", cfg.HTTPAddr, "env", cfg.Env)

	// Фоновые задачи: обработка очереди генерации и чистка протухших заявок
	runner := jobs.New(ctx)
	runner.Every(2*time.Second, "gen_queue", gen.ProcessPending)
	runner.Every(10*time.Minute, "gen_purge", gen.PurgeStale)

	<-ctx.Done()
	logger.Infow("остановка по сигналу")
}
