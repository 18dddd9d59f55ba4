package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/search"
	"github.com/bastiangx/wordhunt/pkg/session"
)

// defaultClient is the rate limit key for requests that do not name a client.
const defaultClient = "local"

// Searcher is the word discovery backend; *search.Orchestrator satisfies it.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (search.Response, error)
	SearchBoth(ctx context.Context, req search.Request) (search.BothResponse, error)
	Validate(words []string) []search.WordValidation
	Feedback(fb search.Feedback) filters.LearningSnapshot
	Stats() session.Stats
	Reset()
}

// Options configures a Server. Reader and Writer default to stdin and stdout.
type Options struct {
	Reader  io.Reader
	Writer  io.Writer
	Limiter *RateLimiter
	// DefaultMaxResults fills requests that leave max unset.
	DefaultMaxResults int
	Logger            *log.Logger
}

// Server handles the IPC for word discovery
type Server struct {
	searcher   Searcher
	limiter    *RateLimiter
	reader     *bufio.Reader
	mu         sync.Mutex
	enc        *msgpack.Encoder
	defaultMax int
	log        *log.Logger
}

// NewServer creates a server; with zero Options it speaks over stdin/stdout.
func NewServer(searcher Searcher, opts Options) *Server {
	if opts.Reader == nil {
		opts.Reader = os.Stdin
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Limiter == nil {
		opts.Limiter = NewRateLimiter(LimiterOptions{})
	}
	if opts.DefaultMaxResults <= 0 {
		opts.DefaultMaxResults = 100
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("ipc")
	}
	return &Server{
		searcher:   searcher,
		limiter:    opts.Limiter,
		reader:     bufio.NewReader(opts.Reader),
		enc:        msgpack.NewEncoder(opts.Writer),
		defaultMax: opts.DefaultMaxResults,
		log:        opts.Logger,
	}
}

// Start signals readiness and serves requests until the input ends or ctx is done.
// A request whose bytes are not msgpack at all ends the stream with an error, since
// the next message boundary is lost.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.")
	s.limiter.Start(ctx)
	defer s.limiter.Stop()

	s.sendResponse(StatusMessage{Status: StatusReady})

	dec := msgpack.NewDecoder(s.reader)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			s.sendError("", CategoryBadRequest, http.StatusBadRequest, "Invalid msgpack request")
			return fmt.Errorf("failed to read request: %w", err)
		}
		s.handleRequest(ctx, raw)
	}
}

// handleRequest processes one encoded request
func (s *Server) handleRequest(ctx context.Context, raw []byte) {
	start := time.Now()

	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", CategoryBadRequest, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Action == ActionHealth {
		s.sendResponse(StatusMessage{ID: req.ID, Status: StatusOK})
		return
	}

	client := req.Client
	if client == "" {
		client = defaultClient
	}
	if ok, wait := s.limiter.Allow(client); !ok {
		s.log.Warnf("Rate limited client %s for %s", client, wait)
		s.sendResponse(ErrorResponse{
			ID:         req.ID,
			Status:     StatusError,
			Category:   CategoryRateLimited,
			Code:       http.StatusTooManyRequests,
			Error:      "Too many requests",
			RetryAfter: int(math.Ceil(wait.Round(time.Millisecond).Seconds())),
		})
		return
	}

	resp := Response{ID: req.ID, Status: StatusOK}
	var err error
	switch req.Action {
	case ActionSearch:
		err = s.handleSearch(ctx, req, &resp)
	case ActionSearchBoth:
		err = s.handleSearchBoth(ctx, req, &resp)
	case ActionValidate:
		if len(req.Words) == 0 {
			s.sendError(req.ID, CategoryBadRequest, http.StatusBadRequest, "Invalid words parameter")
			return
		}
		resp.Validations = s.searcher.Validate(req.Words)
		resp.Count = len(resp.Validations)
	case ActionFeedback:
		if req.Feedback == nil || req.Feedback.Word == "" {
			s.sendError(req.ID, CategoryBadRequest, http.StatusBadRequest, "Missing 'feedback.word' parameter")
			return
		}
		snap := s.searcher.Feedback(*req.Feedback)
		resp.Learning = &snap
	case ActionStats:
		stats := s.searcher.Stats()
		resp.Session = &stats
	case ActionReset:
		s.searcher.Reset()
		stats := s.searcher.Stats()
		resp.Session = &stats
	default:
		s.sendError(req.ID, CategoryBadRequest, http.StatusBadRequest, fmt.Sprintf("Unknown action: %s", req.Action))
		return
	}

	if err != nil {
		c := search.Classify(err)
		if c.Category == search.CategoryUnexpected {
			s.log.Errorf("Request %s failed: %v", req.ID, err)
		} else {
			s.log.Debugf("Request %s rejected: %v", req.ID, err)
		}
		s.sendError(req.ID, c.Category, c.Status, c.Message)
		return
	}

	resp.TimeTaken = time.Since(start).Milliseconds()
	s.log.Debugf("Request %s (%s) answered %d items in %dms", req.ID, req.Action, resp.Count, resp.TimeTaken)
	s.sendResponse(resp)
}

func (s *Server) searchRequest(req Request) search.Request {
	limit := req.MaxResults
	if limit == 0 {
		limit = s.defaultMax
	}
	return search.Request{
		Mode:       model.Mode(req.Mode),
		Filters:    req.Filters,
		MaxResults: limit,
		Depth:      req.Depth,
	}
}

func (s *Server) handleSearch(ctx context.Context, req Request, resp *Response) error {
	out, err := s.searcher.Search(ctx, s.searchRequest(req))
	if err != nil {
		return err
	}
	resp.Words = out.Words
	resp.Plan = &out.Plan
	resp.Crawl = out.Crawl
	resp.Count = len(out.Words)
	return nil
}

func (s *Server) handleSearchBoth(ctx context.Context, req Request, resp *Response) error {
	out, err := s.searcher.SearchBoth(ctx, s.searchRequest(req))
	if err != nil {
		return err
	}
	resp.Both = &out
	resp.Crawl = out.Crawl
	resp.Count = len(out.Combined)
	return nil
}

// sendResponse encodes response as one msgpack message.
func (s *Server) sendResponse(response any) {
	if err := s.send(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(v)
}

// sendError sends an error response
func (s *Server) sendError(id string, category search.Category, code int, message string) {
	s.sendResponse(ErrorResponse{
		ID:       id,
		Status:   StatusError,
		Category: category,
		Code:     code,
		Error:    message,
	})
}
