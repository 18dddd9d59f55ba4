package cli

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/internal/utils"
	"github.com/bastiangx/wordhunt/pkg/analyzer"
	"github.com/bastiangx/wordhunt/pkg/config"
	"github.com/bastiangx/wordhunt/pkg/crawler"
	"github.com/bastiangx/wordhunt/pkg/dictionary"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/search"
	"github.com/bastiangx/wordhunt/pkg/session"
	"github.com/bastiangx/wordhunt/pkg/speed"
	"github.com/bastiangx/wordhunt/pkg/validator"
)

// App is a fully wired word discovery stack.
type App struct {
	Config       *config.Config
	Dictionary   *dictionary.Dictionary
	Session      *session.Store
	Orchestrator *search.Orchestrator
}

// Build wires every component from cfg. pr may be nil, in which case relative state
// paths are used as given. progress receives crawl progress and may be nil.
func Build(cfg *config.Config, pr *utils.PathResolver, progress crawler.Progress) (*App, error) {
	dict, err := loadDictionary(cfg.Dict, pr)
	if err != nil {
		return nil, err
	}
	val := validator.New(dict)

	backend, err := openBackend(cfg.Session, pr)
	if err != nil {
		return nil, err
	}
	store := session.New(session.Options{
		Backend: backend,
		Key:     cfg.Session.Key,
		TTL:     cfg.Session.TTL.Duration,
		Logger:  logger.New("session"),
	})

	learning := filters.NewLearning()
	engine := speed.New(speed.Options{
		Dictionary: dict,
		Validator:  val,
		Session:    store,
		Logger:     logger.New("speed"),
	})
	crawl := crawler.New(crawler.Options{
		Fetcher: crawler.NewHTTPFetcher(crawler.FetcherOptions{
			Timeout:           cfg.Crawler.Timeout.Duration,
			RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
			Burst:             cfg.Crawler.Burst,
			MaxBytes:          cfg.Crawler.MaxBytes,
			UserAgent:         cfg.Crawler.UserAgent,
		}),
		Validator: val,
		Session:   store,
		Sources:   cfg.Crawler.Sources,
		Learning:  learning,
		Logger:    logger.New("crawler"),
	})

	orch := search.New(search.Options{
		Speed:     engine,
		Crawler:   crawl,
		Session:   store,
		Validator: val,
		Analyzer:  analyzer.New(newAdvisor(cfg.AI), logger.New("analyzer")),
		Learning:  learning,
		Timeout:   cfg.Search.Timeout.Duration,
		Logger:    logger.New("search"),
		Progress:  progress,
	})

	return &App{
		Config:       cfg,
		Dictionary:   dict,
		Session:      store,
		Orchestrator: orch,
	}, nil
}

// Close persists and releases the session backend.
func (a *App) Close() error {
	return a.Session.Close()
}

func loadDictionary(cfg config.DictConfig, pr *utils.PathResolver) (*dictionary.Dictionary, error) {
	dict := dictionary.Embedded()

	if cfg.TextFile != "" {
		n, err := dict.LoadFile(cfg.TextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list: %w", err)
		}
		log.Debugf("Loaded %d words from %s", n, cfg.TextFile)
	}

	dir := cfg.ChunkDir
	if pr != nil {
		if found, ok := pr.DictDir(cfg.ChunkDir); ok {
			dir = found
		} else if cfg.ChunkDir != "" {
			log.Warnf("No dictionary chunks found for %s. Using built-in words only...", cfg.ChunkDir)
			dir = ""
		}
	}
	if dir != "" {
		stats, err := dict.LoadDir(dir, cfg.MaxWords)
		if err != nil {
			return nil, fmt.Errorf("failed to load dictionary chunks: %w", err)
		}
		log.Debugf("Loaded %d/%d chunks (%d words) from %s", stats.LoadedChunks, stats.AvailableChunks, stats.LoadedWords, dir)
	}

	log.Debugf("Dictionary ready with %d words", dict.Len())
	return dict, nil
}

// stateNames are the default session locations per backend, relative to the config dir.
var stateNames = map[string]string{
	config.BackendFile:   "sessions",
	config.BackendSQLite: "wordhunt.db",
}

func openBackend(cfg config.SessionConfig, pr *utils.PathResolver) (session.Backend, error) {
	if cfg.Backend == config.BackendMemory {
		return session.NewMemoryBackend(), nil
	}

	path := cfg.Path
	if path == "" {
		path = stateNames[cfg.Backend]
	}
	if pr != nil {
		path = pr.StatePath(path)
	}
	log.Debugf("Session %s backend at %s", cfg.Backend, path)

	if cfg.Backend == config.BackendSQLite {
		return session.NewSQLiteBackend(path)
	}
	return session.NewFileBackend(path)
}

func newAdvisor(cfg config.AIConfig) analyzer.Advisor {
	if !cfg.Enabled {
		return nil
	}
	key := cfg.APIKey()
	if key == "" {
		log.Warnf("AI advisor enabled but %s is not set. Continuing without it...", cfg.APIKeyEnv)
		return nil
	}
	return analyzer.NewOpenAIAdvisor(analyzer.OpenAIOptions{
		BaseURL:     cfg.BaseURL,
		APIKey:      key,
		Model:       cfg.Model,
		Timeout:     cfg.Timeout.Duration,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
}
