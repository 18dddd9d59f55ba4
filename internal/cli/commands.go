package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/pkg/config"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/search"
	"github.com/bastiangx/wordhunt/pkg/server"
)

const gh = "https://github.com/bastiangx/wordhunt"

// requestFlags are shared by search and both.
type requestFlags struct {
	maxResults int
	depth      int
	filters    filterFlags
}

func (r *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&r.maxResults, "max", "n", 0, "maximum results (10-10000, default from config)")
	cmd.Flags().IntVar(&r.depth, "depth", 0, "crawl depth 1-5, 0 lets the analyzer decide")
	r.filters.register(cmd)
}

func (r *requestFlags) request(cmd *cobra.Command, cfg *config.Config, mode string) (search.Request, error) {
	spec, err := r.filters.spec(cmd)
	if err != nil {
		return search.Request{}, err
	}
	req := search.Request{
		Mode:       model.Mode(mode),
		Filters:    spec,
		MaxResults: r.maxResults,
		Depth:      r.depth,
	}
	if req.MaxResults == 0 {
		req.MaxResults = cfg.Search.MaxResults
	}
	if req.Depth == 0 {
		req.Depth = cfg.Search.Depth
	}
	return req, nil
}

func newSearchCommand(o *rootOptions) *cobra.Command {
	var mode string
	var rf requestFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find words in speed or hyper mode",
		Example: `  wordhunt search --min-length 5 --max-length 8 --starts-with ka
  wordhunt search -m hyper --rarity 0.6 --difficulty easy -n 50
  wordhunt search -m hyper --filters brand.yaml -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode == "" {
				mode = o.cfg.Search.Mode
			}
			req, err := rf.request(cmd, o.cfg, mode)
			if err != nil {
				return err
			}
			app, err := o.app(cmd, true)
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.Orchestrator.Search(cmd.Context(), req)
			if err != nil {
				return userError(err)
			}
			return o.printer(cmd).Search(resp)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "speed or hyper (default from config)")
	rf.register(cmd)
	return cmd
}

func newBothCommand(o *rootOptions) *cobra.Command {
	var rf requestFlags
	cmd := &cobra.Command{
		Use:   "both",
		Short: "Run speed then hyper mode and merge the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := rf.request(cmd, o.cfg, "")
			if err != nil {
				return err
			}
			app, err := o.app(cmd, true)
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.Orchestrator.SearchBoth(cmd.Context(), req)
			if err != nil {
				return userError(err)
			}
			return o.printer(cmd).Both(resp)
		},
	}
	rf.register(cmd)
	return cmd
}

func newValidateCommand(o *rootOptions) *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "validate [words...]",
		Short: "Check whether words read as plausible English",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !interactive {
				return fmt.Errorf("no words given: pass words or use -i")
			}
			app, err := o.app(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			p := o.printer(cmd)
			if interactive {
				return NewInputHandler(app.Orchestrator.Validate, p, cmd.InOrStdin(), cmd.ErrOrStderr()).Start()
			}
			return p.Validations(app.Orchestrator.Validate(args))
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read words from stdin until EOF")
	return cmd
}

func newFeedbackCommand(o *rootOptions) *cobra.Command {
	var (
		reject       bool
		satisfaction float64
		ff           filterFlags
	)
	cmd := &cobra.Command{
		Use:   "feedback WORD",
		Short: "Rate a word, and optionally the filters that found it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fb := search.Feedback{Word: args[0], Positive: !reject}
			if cmd.Flags().Changed("satisfaction") {
				fb.Satisfaction = &satisfaction
			}
			if ff.set(cmd) {
				spec, err := ff.spec(cmd)
				if err != nil {
					return err
				}
				fb.Filters = &spec
			}

			app, err := o.app(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			snap := app.Orchestrator.Feedback(fb)
			verdict := "kept"
			if reject {
				verdict = "blacklisted"
			}
			return o.printer(cmd).Value(snap, fmt.Sprintf("%s %s (threshold now %.2f)", args[0], verdict, snap.Threshold))
		},
	}
	cmd.Flags().BoolVar(&reject, "reject", false, "mark the word as unwanted")
	cmd.Flags().Float64Var(&satisfaction, "satisfaction", 0, "filter satisfaction in [0,1]")
	ff.register(cmd)
	return cmd
}

func newSessionCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect, list or reset the session memory",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show the session summary and strategy table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				app, err := o.app(cmd, false)
				if err != nil {
					return err
				}
				defer app.Close()
				return o.printer(cmd).Stats(app.Orchestrator.Stats())
			},
		},
		&cobra.Command{
			Use:   "history",
			Short: "List the searches recorded in this session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				app, err := o.app(cmd, false)
				if err != nil {
					return err
				}
				defer app.Close()
				return o.printer(cmd).History(app.Session.Searches())
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Forget every returned word and start a new session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				app, err := o.app(cmd, false)
				if err != nil {
					return err
				}
				defer app.Close()
				app.Orchestrator.Reset()
				return o.printer(cmd).Stats(app.Orchestrator.Stats())
			},
		},
	)
	return cmd
}

func newConfigCommand(o *rootOptions) *cobra.Command {
	var showPaths bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the active config and where it was loaded from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showPaths {
				if o.paths == nil {
					return fmt.Errorf("paths could not be resolved on this system")
				}
				return o.printer(cmd).Runtime(o.paths.RuntimeInfo())
			}

			var buf bytes.Buffer
			if err := toml.NewEncoder(&buf).Encode(o.cfg); err != nil {
				return err
			}
			path := o.cfgPath
			if path == "" {
				path = "built-in defaults"
			}
			text := mutedStyle.Render("# "+path) + "\n" + buf.String()
			return o.printer(cmd).Value(o.cfg, text)
		},
	}
	cmd.Flags().BoolVar(&showPaths, "paths", false, "show the resolved config, data and executable locations")
	return cmd
}

func newServeCommand(o *rootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the msgpack IPC server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.app(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			limiter := server.NewRateLimiter(server.LimiterOptions{
				Limit:         o.cfg.Server.RateLimit,
				Window:        o.cfg.Server.RateWindow.Duration,
				SweepInterval: o.cfg.Server.SweepInterval.Duration,
			})
			srv := server.NewServer(app.Orchestrator, server.Options{
				Reader:            cmd.InOrStdin(),
				Writer:            cmd.OutOrStdout(),
				Limiter:           limiter,
				DefaultMaxResults: o.cfg.Search.MaxResults,
				Logger:            logger.New("ipc"),
			})

			showStartupInfo(version, app)
			return srv.Start(cmd.Context())
		},
	}
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show current version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			printBanner(version)
		},
	}
}

// printBanner writes the styled version banner to stderr.
func printBanner(version string) {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(textColor).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).Foreground(textColor)
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ wordhunt ] Finds rare words, fast or thorough!")
	l.Print("", "version", version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(version string, app *App) {
	l := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)
	l.Print("==========")
	l.Print(" wordhunt ")
	l.Print("==========")
	l.Infof("Version: %s", version)
	l.Infof("Process ID: [ %d ]", os.Getpid())
	l.Infof("dictionary: ( %d words )", app.Dictionary.Len())
	l.Infof("session: ( %s )", app.Session.Stats().SessionID)
	l.Info("status: ready")
	l.Print("==========")
}
