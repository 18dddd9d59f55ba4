// Package cli builds the wordhunt command line: one-shot searches, word validation,
// session management and the msgpack IPC server.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/internal/utils"
	"github.com/bastiangx/wordhunt/pkg/config"
	"github.com/bastiangx/wordhunt/pkg/search"
)

// rootOptions carries the global flags and the config loaded from them.
type rootOptions struct {
	configPath string
	debug      bool
	format     string
	rows       int
	noProgress bool

	cfg     *config.Config
	cfgPath string
	paths   *utils.PathResolver
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand assembles the command tree.
func NewRootCommand(version string) *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "wordhunt",
		Short:         "Discover rare, brandable English words",
		Long:          "wordhunt finds words in two modes: speed generates them locally, hyper crawls public word lists.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "path to config.toml")
	pf.BoolVarP(&o.debug, "debug", "d", false, "toggle debug logging")
	pf.StringVarP(&o.format, "format", "f", "", "output format: text, json or yaml")
	pf.IntVar(&o.rows, "rows", -1, "rows shown in text tables, 0 for all")
	pf.BoolVar(&o.noProgress, "no-progress", false, "hide the crawl progress bar")

	root.AddCommand(
		newSearchCommand(o),
		newBothCommand(o),
		newValidateCommand(o),
		newFeedbackCommand(o),
		newSessionCommand(o),
		newConfigCommand(o),
		newServeCommand(o, version),
		newVersionCommand(version),
	)
	return root
}

// load resolves paths, reads the config and the .env files, and applies flag overrides.
func (o *rootOptions) load(cmd *cobra.Command) error {
	logger.Setup(o.debug)

	paths, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v. Using built-in defaults...", err)
	}
	o.paths = paths
	if paths != nil && o.debug {
		log.Debug("Runtime", paths.RuntimeInfo().KeyVals()...)
	}

	cfg, cfgPath, err := config.LoadConfigWithPriority(o.configPath, paths)
	if err != nil {
		return err
	}
	o.cfg, o.cfgPath = cfg, cfgPath

	if paths != nil {
		config.LoadEnv(paths.ConfigDir())
	} else {
		config.LoadEnv()
	}

	if cmd.Flags().Changed("format") {
		switch o.format {
		case config.FormatText, config.FormatJSON, config.FormatYAML:
			o.cfg.CLI.Format = o.format
		default:
			return fmt.Errorf("unknown format %q: use text, json or yaml", o.format)
		}
	}
	if o.rows >= 0 {
		o.cfg.CLI.Rows = o.rows
	}
	log.Debugf("Using config file: (%s)", o.cfgPath)
	return nil
}

func (o *rootOptions) app(cmd *cobra.Command, withProgress bool) (*App, error) {
	progress := newCrawlProgress(cmd.ErrOrStderr(), withProgress && o.cfg.CLI.Progress && !o.noProgress)
	return Build(o.cfg, o.paths, progress)
}

func (o *rootOptions) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(cmd.OutOrStdout(), o.cfg.CLI.Format, o.cfg.CLI.Rows)
}

// userError turns a search error into its user-facing message. Unexpected causes are
// logged, never shown.
func userError(err error) error {
	c := search.Classify(err)
	if c.Category == search.CategoryUnexpected {
		log.Debugf("Unexpected failure: %v", err)
	}
	return errors.New(c.Message)
}
