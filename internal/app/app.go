package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/mail"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/audit"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/definition"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/event"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/flag"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/image"
	progressrepo "github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/progress"
	wordlistrepo "github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/wordlist"
	billingclient "github.com/heartmarshall/kiddict-backend/internal/adapter/provider/billing"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/provider/freedict"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/provider/imagegen"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/provider/llm"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/provider/pixabay"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/provider/tts"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/spreadsheet"
	"github.com/heartmarshall/kiddict-backend/internal/auth"
	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/lexicon"
	"github.com/heartmarshall/kiddict-backend/internal/service/billing"
	"github.com/heartmarshall/kiddict-backend/internal/service/dictionary"
	"github.com/heartmarshall/kiddict-backend/internal/service/imagery"
	"github.com/heartmarshall/kiddict-backend/internal/service/moderation"
	"github.com/heartmarshall/kiddict-backend/internal/service/progress"
	"github.com/heartmarshall/kiddict-backend/internal/service/quiz"
	"github.com/heartmarshall/kiddict-backend/internal/service/session"
	"github.com/heartmarshall/kiddict-backend/internal/service/speech"
	"github.com/heartmarshall/kiddict-backend/internal/service/tracker"
	"github.com/heartmarshall/kiddict-backend/internal/service/wordlist"
	"github.com/heartmarshall/kiddict-backend/internal/transport/middleware"
	"github.com/heartmarshall/kiddict-backend/internal/transport/rest"
)

const speechMIMEType = "audio/mpeg"

// Run is the application entry point. It loads configuration, connects to
// the database, wires the services and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		n, err := postgres.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", slog.Int("count", n))
	}

	application, err := newApplication(ctx, cfg, pool, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if !cfg.Scheduler.Disabled {
		application.scheduler.Start()
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      application.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return serve(ctx, server, cfg.Server.ShutdownTimeout, logger)
}

// application is the wired HTTP stack plus the background workers it owns.
type application struct {
	handler   http.Handler
	scheduler *scheduler
	closers   []func()
}

// Close stops background workers in reverse start order.
func (a *application) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApplication builds repositories, providers, services and the HTTP
// handler. The activity tracker is started; the scheduler is not.
func newApplication(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*application, error) {
	app := &application{}

	// Repositories.
	txm := postgres.NewTxManager(pool)
	definitions := definition.New(pool)
	flags := flag.New(pool)
	images := image.New(pool)
	lists := wordlistrepo.New(pool)
	progressRecords := progressrepo.New(pool)
	events := event.New(pool)
	auditLog := audit.New(pool)

	// Providers.
	lex := lexicon.Default()
	generators := definitionGenerators(cfg, logger)

	synth, closeTTS, err := speechSynthesizer(ctx, cfg.Speech, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeTTS)

	mailer, err := mail.NewSender(ctx, cfg.Mail, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	defaultGrade, err := domain.ParseGrade(cfg.Dictionary.DefaultGrade)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("config: dictionary.default_grade: %w", err)
	}

	// Services.
	activity := tracker.New(logger, events, cfg.Tracker)
	activity.Start(ctx)
	app.closers = append(app.closers, activity.Stop)

	dictSvc := dictionary.NewService(logger, definitions, flags, lex, generators...)
	sessions := session.NewStore(logger, defaultGrade, cfg.Dictionary.HistoryLimit, cfg.Session.IdleTTL)
	quizSvc := quiz.NewService(logger, cfg.Quiz, dictSvc, lex, lists, events, progressRecords, activity)
	moderationSvc := moderation.NewService(logger, flags, auditLog)
	imagerySvc := imagery.NewService(logger, images,
		imagegen.NewGenerator(cfg.Images, logger),
		pixabay.NewClient(cfg.Images.PixabayURL, cfg.Images.PixabayKey, cfg.Images.Timeout, logger))
	imagerySvc.SetAuditLog(auditLog)
	speechSvc, err := speech.NewService(logger, synth, speechMIMEType, flags, cfg.Speech.CacheSize)
	if err != nil {
		app.Close()
		return nil, err
	}
	listSvc := wordlist.NewService(logger, lists, txm, spreadsheet.ParseWords, cfg.WordList)
	progressSvc := progress.NewService(logger, progressRecords, events, lists, mailer)
	billingSvc := billing.NewService(logger, billingclient.NewClient(cfg.Billing, logger), cfg.Billing.Plans)

	app.scheduler = newScheduler(logger, cfg.Scheduler, sessions, quizSvc, progressSvc)

	// Transport.
	limiter := middleware.NewRateLimiter(5 * time.Minute)
	app.closers = append(app.closers, limiter.Stop)

	var searchLimit middleware.Middleware
	if cfg.Server.SearchRateLimit > 0 {
		searchLimit = limiter.Limit(cfg.Server.SearchRateLimit)
	}

	router := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, activity, BuildVersion()),
		Words:    rest.NewWordHandler(dictSvc, sessions, activity, imagerySvc, speechSvc, logger),
		Session:  rest.NewSessionHandler(sessions, logger),
		Quiz:     rest.NewQuizHandler(quizSvc, sessions, logger),
		Lists:    rest.NewListHandler(listSvc, logger),
		Progress: rest.NewProgressHandler(progressSvc, logger),
		Billing:  rest.NewBillingHandler(billingSvc, logger),
		Admin:    rest.NewAdminHandler(moderationSvc, imagerySvc, activity, progressSvc, logger),
	}, searchLimit)

	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	app.handler = middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(cfg.CORS),
		middleware.Session,
		middleware.Auth(jwt),
		middleware.Logger(logger),
	)(router)

	return app, nil
}

// definitionGenerators orders the lookup fallbacks. The LLM is only used
// when a key is configured.
func definitionGenerators(cfg *config.Config, logger *slog.Logger) []dictionary.Generator {
	dict := freedict.NewProvider(cfg.Dictionary.FreeDictURL, cfg.Dictionary.LookupTimeout, logger)
	if cfg.LLM.APIKey == "" {
		logger.Warn("llm disabled, using the free dictionary only")
		return []dictionary.Generator{dict}
	}

	gen := llm.NewGenerator(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens, logger)
	if cfg.Dictionary.FreeDictFirst {
		return []dictionary.Generator{dict, gen}
	}
	return []dictionary.Generator{gen, dict}
}

type synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// speechSynthesizer returns a nil interface when speech is disabled so the
// speech service reports itself unavailable.
func speechSynthesizer(ctx context.Context, cfg config.SpeechConfig, logger *slog.Logger) (synthesizer, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}
	client, err := tts.NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("close tts client", slog.String("error", err.Error()))
		}
	}, nil
}

func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
