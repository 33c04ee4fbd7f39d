package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"factagent/internal/config"
	"factagent/internal/embedding"
	"factagent/internal/llm"
	"factagent/internal/memory"
	"factagent/internal/pipeline"
	"factagent/internal/sentiment"
)

var (
	// Global flags
	cfgPath string
	envFile string
	verbose bool
	dbPath  string
	addr    string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factagent",
	Short: "factagent - AI fact-checking agent",
	Long: `factagent is an AI-powered fact-checking agent.

It extracts verifiable claims from text or images, gathers evidence
from a local knowledge base and web search, labels each evidence item
as SUPPORTS or REFUTES, and aggregates the labels into a verdict with
a confidence score. Verified claims are cached in a SQLite memory
store for fast repeat lookups.

Credentials come from GEMINI_API_KEY (or GOOGLE_API_KEY), with values
in a .env file taking precedence over the machine environment.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "factagent.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "explicit .env file (overrides the default lookup)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "override the SQLite database path")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "override the HTTP listen address")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(keycheckCmd)
}

// loadConfig loads the YAML config plus the .env overlay and applies
// command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		if _, err := config.LoadDotenv([]string{envFile}, true); err != nil {
			return nil, err
		}
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
	}
	if dbPath != "" {
		cfg.Memory.DatabasePath = dbPath
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	return cfg, nil
}

// keySourceFor re-resolves the credential from the environment on every
// call so a rotated .env key is picked up without a restart.
func keySourceFor(cfg *config.Config) llm.KeySource {
	return func() string {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
			return key
		}
		return cfg.LLM.APIKey
	}
}

func buildClient(cfg *config.Config) *llm.GeminiClient {
	return llm.NewGeminiClient(llm.GeminiConfig{
		KeySource:          keySourceFor(cfg),
		BaseURL:            cfg.LLM.BaseURL,
		Model:              cfg.LLM.Model,
		Timeout:            cfg.GetLLMTimeout(),
		MaxOutputTokens:    cfg.LLM.MaxOutputTokens,
		EnableGoogleSearch: cfg.LLM.EnableGoogleSearch,
	}, logger)
}

func buildStore(cfg *config.Config) (*memory.Store, error) {
	store, err := memory.NewStore(cfg.Memory.DatabasePath, logger)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey != "" {
		engine, err := embedding.NewGenAIEngine(cfg.LLM.APIKey, cfg.LLM.EmbeddingModel, embedding.TaskTypeFactVerification)
		if err != nil {
			logger.Warn("embedding engine unavailable, knowledge search degrades to keywords", zap.Error(err))
		} else {
			store.SetEmbeddingEngine(engine)
		}
	}
	return store, nil
}

func buildPipeline(cfg *config.Config, client llm.Client, store *memory.Store) *pipeline.Pipeline {
	analyzer := sentiment.NewAnalyzer(client, logger)
	return pipeline.New(client, store, analyzer, pipeline.Options{
		TopK:              cfg.Pipeline.TopK,
		MaxClaims:         cfg.Pipeline.MaxClaims,
		MaxParallelClaims: cfg.Pipeline.MaxParallelClaims,
		CacheSimilarity:   cfg.Memory.CacheSimilarity,
		CacheScanLimit:    cfg.Memory.CacheScanLimit,
	}, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
