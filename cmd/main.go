package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vovarama1992/mission_tower/internal/ai"
	"github.com/Vovarama1992/mission_tower/internal/buffer"
	"github.com/Vovarama1992/mission_tower/internal/config"
	"github.com/Vovarama1992/mission_tower/internal/delivery"
	"github.com/Vovarama1992/mission_tower/internal/domain"
	"github.com/Vovarama1992/mission_tower/internal/infra"
	"github.com/Vovarama1992/mission_tower/internal/notificator"
	"github.com/Vovarama1992/mission_tower/internal/ports"
	"github.com/Vovarama1992/mission_tower/internal/speech"
)

const serviceName = "mission_tower"

func main() {
	rootCmd := &cobra.Command{
		Use:   "mission_tower",
		Short: "Keeps a buffer of ready-to-play Paw Patrol missions and serves them over HTTP",
		// конфиг и ошибки печатаем сами
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(fillCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve missions and refill the buffer in the background",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			return a.serve(ctx)
		},
	}
}

func fillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Run a single maintenance pass and exit",
		Long: `Run a single maintenance pass and exit.

A running serve process keeps its own buffer; only unfinished missions older
than DRAFT_TTL are purged, so fill may share the database with it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			rep, err := a.maintainer.Run(ctx)
			if err != nil {
				return fmt.Errorf("pass %s: %w", rep.PassID, err)
			}
			fmt.Printf("buffer holds %d/%d missions (%d created, %d failed)\n",
				rep.Unrequested, a.cfg.BufferSize, rep.Created, rep.Failed)
			return nil
		},
	}
}

type app struct {
	cfg        *config.Config
	db         *sql.DB
	zl         *logger.ZapLogger
	base       *zap.Logger
	missions   ports.MissionService
	maintainer *buffer.Maintainer
}

func bootstrap(ctx context.Context) (*app, error) {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	baseLogger, err := newBaseLogger(cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// DB
	// =========================================================================

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := infra.OpenDB(dbCtx, cfg)
	if err != nil {
		baseLogger.Sync()
		return nil, fmt.Errorf("open %s database: %w", cfg.DatabaseDriver, err)
	}

	missionRepo := infra.NewMissionRepo(db, cfg.DatabaseDriver)

	// =========================================================================
	// AI / SPEECH
	// =========================================================================

	chat := ai.NewOpenAIClient(cfg.OpenAIKey, ai.DefaultCompletionOptions(cfg.Model, cfg.MaxTokens))
	generator := ai.NewMissionGenerator(chat, cfg.TranslationLanguage, zl)

	var tts speech.TTSClient
	switch cfg.TTSProvider {
	case config.ProviderElevenLabs:
		tts = speech.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
	default:
		tts = speech.NewOpenAITTS(cfg.OpenAIKey, cfg.TTSModel, cfg.TTSVoice)
	}

	synth := speech.NewService(tts, speech.NewFFmpegTranscoder(cfg.FFmpegPath), cfg.AudioDir, zl).
		WithProber(speech.NewFFprobe(cfg.FFprobePath))

	// =========================================================================
	// ALERTS / ARCHIVE (optional)
	// =========================================================================

	var telegram notificator.Notificator
	if cfg.TelegramEnabled() {
		tg, err := notificator.NewInfra(cfg.TelegramToken, cfg.TelegramAdminChatIDs)
		if err != nil {
			zl.Log(logger.LogEntry{Level: "warn", Message: "telegram alerts disabled", Service: serviceName, Error: err})
		} else {
			telegram = tg
		}
	}
	alerts := notificator.NewService(telegram, zl)

	maintainer := buffer.NewMaintainer(
		missionRepo,
		generator,
		synth,
		alerts,
		buffer.Options{
			Target:          cfg.BufferSize,
			MaxPassAttempts: cfg.MaxPassAttempts,
			DraftTTL:        cfg.DraftTTL,
		},
		zl,
	)

	if cfg.S3.Enabled() {
		s3Client, err := infra.NewS3Client(ctx, cfg.S3)
		if err != nil {
			zl.Log(logger.LogEntry{Level: "warn", Message: "audio archive disabled", Service: serviceName, Error: err})
		} else {
			maintainer.WithArchive(domain.NewAudioArchive(s3Client, cfg.S3.Prefix))
		}
	}

	return &app{
		cfg:        cfg,
		db:         db,
		zl:         zl,
		base:       baseLogger,
		missions:   domain.NewMissionService(missionRepo, cfg.AudioDir, cfg.BufferSize, zl),
		maintainer: maintainer,
	}, nil
}

func (a *app) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	schedulerDone := buffer.NewScheduler(a.maintainer, a.cfg.MaintenanceInterval, a.zl).Go(ctx)

	// =========================================================================
	// ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Range"},
		MaxAge:         300,
	}))

	delivery.RegisterRoutes(r, delivery.NewMissionHandler(a.missions, a.zl), a.cfg.RateLimitPerMinute)

	// =========================================================================
	// START SERVER
	// =========================================================================

	srv := &http.Server{Addr: ":" + a.cfg.Port, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + srv.Addr,
		Service: serviceName,
	})

	err := srv.ListenAndServe()

	// база закрывается только после того, как проход досчитал
	cancel()
	<-schedulerDone

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (a *app) close() {
	a.db.Close()
	a.base.Sync()
}

// newBaseLogger пишет и в stdout, и в файл в каталоге логов.
func newBaseLogger(logDir string) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stdout", filepath.Join(logDir, "mission_control.log")}
	return zc.Build()
}
