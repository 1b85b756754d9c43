// Package cli implements the pharmaguard command-line interface.
package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/ai"
	"github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/config/file"
	"github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/registry/openfda"
	"github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/storage/sqlite"
	"github.com/pharmaguard/pharmaguard-cli/internal/chunker"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driving"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/services"
	"github.com/pharmaguard/pharmaguard-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// Services wired by initServices; commands check for nil so the package
// stays testable with hand-wired fakes.
var (
	cfg file.Config

	labelStore    driven.LabelStore
	labelRegistry driven.LabelRegistry
	ingestService driving.IngestService

	// Built lazily because they need a reachable embedding provider.
	embedder       driven.EmbeddingService
	embedService   driving.EmbedService
	qaService      driving.QAService
	compareService driving.CompareService
)

var rootCmd = &cobra.Command{
	Use:   "pharmaguard",
	Short: "Evidence-grounded Q&A over drug labeling",
	Long: `PharmaGuard answers questions about drug labeling documents using
only the label's own text. Every answer line cites the passages it came
from, so claims can be traced back to the label verbatim.

Typical workflow:
  pharmaguard ingest aspirin
  pharmaguard embed <label-id>
  pharmaguard ask <label-id> "Can I take this with ibuprofen?"`,
	PersistentPreRunE: initServices,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ~/.pharmaguard/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

// initServices wires storage, chunking and ingestion. Embedding-backed
// services are wired on first use instead, so commands that never embed
// do not require a reachable provider.
func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	var err error
	cfg, err = file.Load(configPath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open label store: %w", err)
	}
	labelStore = store

	ch, err := chunker.New(cfg.Chunking.MaxChars, cfg.Chunking.OverlapChars)
	if err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	labelRegistry = openfda.NewClient(openfda.Config{})
	ingestService = services.NewIngestService(labelStore, labelRegistry, ch)
	return nil
}

// ensureEmbedding wires the embedding-backed services, validating
// provider connectivity once per invocation.
func ensureEmbedding() error {
	if embedService != nil {
		return nil
	}
	if labelStore == nil || ingestService == nil {
		return errors.New("services not configured")
	}

	svc, err := ai.CreateAndValidateEmbeddingService(ai.Settings{
		Provider:   cfg.Embedding.Provider,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}
	embedder = svc
	logger.Debug("Embedding provider ready: %s (%d dimensions)", svc.ModelName(), svc.Dimensions())

	index := services.NewIndex(labelStore, embedder)
	retriever := services.NewRetriever(index, embedder)
	composer := services.NewComposer(cfg.Answer.SafetyNote)

	embedService = index
	qaService = services.NewQAService(labelStore, retriever, composer,
		cfg.Retrieval.TopK, cfg.Retrieval.MinSimilarity)
	compareService = services.NewComparator(ingestService, index, retriever,
		cfg.Retrieval.MinSimilarity)
	return nil
}

func shutdown() {
	if embedder != nil {
		embedder.Close()
	}
	if labelStore != nil {
		labelStore.Close()
	}
}
