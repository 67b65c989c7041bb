package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rural-health-assistant/internal/agent"
	"rural-health-assistant/internal/catalog"
	"rural-health-assistant/internal/config"
	"rural-health-assistant/internal/consultation"
	"rural-health-assistant/internal/profile"
	"rural-health-assistant/internal/report"
	"rural-health-assistant/internal/session"
	"rural-health-assistant/internal/storage"
	"rural-health-assistant/internal/voice"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rural-health-assistant",
		Short: "Rural telehealth assistant API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (postgres storage driver only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			m, err := migrate.New("file://"+cfg.MigrationsDir, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := m.Up(); err != nil && err != migrate.ErrNoChange {
				return err
			}
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := storage.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()
	logger.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	herbal, err := catalog.Load(cfg.DataDir, catalog.KindHerbal)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load herbal catalog")
	}
	generic, err := catalog.Load(cfg.DataDir, catalog.KindGeneric)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load generic catalog")
	}

	gateway := agent.NewOllamaClient(cfg.OllamaHost, cfg.OllamaModel)
	stt := agent.NewWhisperClient(cfg.STTServiceURL, cfg.STTLanguage)
	sessions := session.NewManager()

	profileSvc := profile.NewService(store, sessions)
	consultationSvc := consultation.NewService(store, gateway, herbal, generic, sessions, logger)
	reportSvc := report.NewService(store, gateway, sessions, logger)
	voicePipeline := voice.NewPipeline(stt)

	profileHandler := profile.NewHandler(profileSvc)
	consultationHandler := consultation.NewHandler(consultationSvc, voicePipeline)
	catalogHandler := catalog.NewHandler(herbal, generic)
	reportHandler := report.NewHandler(reportSvc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	// CORS for a local frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		profile.RegisterRoutes(r, profileHandler)
		consultation.RegisterRoutes(r, consultationHandler)
		catalog.RegisterRoutes(r, catalogHandler)
		report.RegisterRoutes(r, reportHandler)
	})

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	return nil
}
