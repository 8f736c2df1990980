// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-index CLI. It rebuilds the
// full-text search payload and the affiliation fields of the paper catalog
// from the conference PDFs, and offers maintenance and query commands over
// the results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soyoung-yu/paper-site/internal/affiliation"
	"github.com/soyoung-yu/paper-site/internal/index"
	"github.com/soyoung-yu/paper-site/internal/observability"
	"github.com/soyoung-yu/paper-site/internal/pdftext"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is loaded and validated before every command runs.
	cfg    types.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "paper-index",
	Short: "Build the full-text search index and affiliations of the paper site",
	Long: `paper-index reads the paper catalog (public/papers.json), extracts the
text of every PDF under public/papers/<folder>/, and writes the search
payload (public/papers-search.json). Affiliations found in each paper are
matched against the controlled vocabulary (public/affiliation.txt) and
written back to the catalog.

Settings come from paper-index.yaml, PAPER_INDEX_* environment variables,
and flags, in increasing order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if keys, ok := localKeys[cmd]; ok {
			bindFlags(cmd.Flags(), keys)
		}
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c
		logger = observability.NewLogger(cfg.Logging)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(types.DefaultConfig())

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-index.yaml or ~/.config/paper-index/paper-index.yaml)")
	pf.String("catalog", "", "catalog JSON (default public/papers.json)")
	pf.String("papers-dir", "", "directory with one subdirectory per folder slug (default public/papers)")
	pf.String("search-index", "", "search payload JSON (default public/papers-search.json)")
	pf.String("vocabulary", "", "affiliation vocabulary, one name per line (default public/affiliation.txt)")
	pf.String("synonyms", "", "optional YAML file of extra affiliation aliases")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.String("metrics-textfile", "", "write run metrics in Prometheus text format to this file")

	bindFlags(pf, map[string]string{
		"paths.catalog":      "catalog",
		"paths.papers_dir":   "papers-dir",
		"paths.search_index": "search-index",
		"paths.vocabulary":   "vocabulary",
		"paths.synonyms":     "synonyms",
		"logging.level":      "log-level",
		"logging.format":     "log-format",
		"metrics.textfile":   "metrics-textfile",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-index")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-index"))
		}
	}

	viper.SetEnvPrefix("PAPER_INDEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key with viper so that environment
// variables and Unmarshal see keys that no file or flag sets.
func setDefaults(d types.Config) {
	defaults := map[string]any{
		"paths.catalog":         d.Paths.Catalog,
		"paths.papers_dir":      d.Paths.PapersDir,
		"paths.search_index":    d.Paths.SearchIndex,
		"paths.vocabulary":      d.Paths.Vocabulary,
		"paths.synonyms":        d.Paths.Synonyms,
		"index.workers":         d.Index.Workers,
		"index.backend":         string(d.Index.Backend),
		"index.pdftotext_image": d.Index.PdftotextImage,
		"store.dir":             d.Store.Dir,
		"store.max_results":     d.Store.MaxResults,
		"logging.level":         d.Logging.Level,
		"logging.format":        d.Logging.Format,
		"logging.output":        d.Logging.Output,
		"metrics.textfile":      d.Metrics.Textfile,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// localKeys maps config keys to flags of one subcommand. Several commands
// share keys, so they are bound only for the command that runs.
var localKeys = map[*cobra.Command]map[string]string{}

// bindLocal records the config keys cmd's own flags override.
func bindLocal(cmd *cobra.Command, keys map[string]string) {
	localKeys[cmd] = keys
}

// bindFlags binds config keys to flags of fs so that a flag given on the
// command line overrides the file and environment.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func loadConfig() (types.Config, error) {
	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// newBuilder loads the vocabulary and opens the extraction backend. The
// vocabulary is loaded first so a missing file fails before any container
// runtime is probed.
func newBuilder(ctx context.Context, metrics *observability.Metrics) (*index.Builder, *affiliation.Registry, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, nil, err
	}
	text, err := pdftext.New(ctx, cfg.Index)
	if err != nil {
		return nil, nil, err
	}
	b := index.NewBuilder(text, affiliation.NewExtractor(reg), index.Options{
		PapersDir: cfg.Paths.PapersDir,
		Workers:   cfg.Index.Workers,
		Logger:    logger,
		Metrics:   metrics,
	})
	return b, reg, nil
}

func loadRegistry() (*affiliation.Registry, error) {
	syn, err := affiliation.LoadSynonyms(cfg.Paths.Synonyms)
	if err != nil {
		return nil, err
	}
	reg, err := affiliation.LoadRegistry(cfg.Paths.Vocabulary, syn)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("labels", reg.Len()).Str("path", cfg.Paths.Vocabulary).Msg("vocabulary loaded")
	return reg, nil
}

// writeMetrics writes the run metrics when a textfile is configured. A
// failure is logged, not returned: the artifacts are already written.
func writeMetrics(m *observability.Metrics) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("writing metrics failed")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
