package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/teamhub/internal/adapters/driven/ai/gemini"
	"github.com/custodia-labs/teamhub/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/teamhub/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/teamhub/internal/config"
	"github.com/custodia-labs/teamhub/internal/core/services"
	"github.com/custodia-labs/teamhub/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth JWT secret is required; set " + config.EnvJWTSecret)
	}

	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	logger.Info("storage ready", "path", store.Path())

	ai, err := gemini.NewService(gemini.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		EmbedModel:  cfg.AI.EmbedModel,
		TextModel:   cfg.AI.TextModel,
		AnswerModel: cfg.AI.AnswerModel,
		Timeout:     cfg.AITimeout(),
	})
	if err != nil {
		return fmt.Errorf("init ai service: %w", err)
	}

	docs := store.DocumentStore()
	users := store.UserStore()

	authService := services.NewAuthService(users, []byte(cfg.Auth.JWTSecret), cfg.TokenTTL())
	docService := services.NewDocumentService(docs, store.VersionStore(), store.ActivityStore(), users, ai)
	searchService := services.NewSearchService(docs, users, store.TextIndex(), ai)
	qaService := services.NewQAService(docs, ai)

	router := httpapi.NewRouter(authService, docService, searchService, qaService, httpapi.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	return router.Run(cfg.Server.Addr)
}
