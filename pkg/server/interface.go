/*
Package server implements msgpack IPC for word discovery.

Clients write msgpack maps to stdin and read msgpack maps from stdout; logs go to
stderr. The first message the server writes is a ready signal:

	{"status": "ready"}

# Requests

Every request carries an action and, optionally, an id that is echoed back. Requests
without an id get a generated one. Client names the caller for rate limiting.

	{"id": "req_001", "action": "search", "mode": "speed", "max": 50, "filters": {"length": {"min": 4, "max": 8}}}
	{"id": "req_002", "action": "search_both", "max": 100, "depth": 2}
	{"id": "req_003", "action": "validate", "words": ["kumquat", "xqzv"]}
	{"id": "req_004", "action": "feedback", "feedback": {"word": "voltrix", "positive": true}}
	{"id": "req_005", "action": "stats"}
	{"id": "req_006", "action": "reset"}
	{"id": "req_007", "action": "health"}

# Responses

Successful responses have status "ok", the fields of their action, a count and the
time taken in milliseconds:

	{"id": "req_001", "status": "ok", "words": [...], "plan": {...}, "c": 50, "t": 412}

Failures have status "error", a category, an HTTP-style code and a message safe to show
to the user. Rate limited requests carry the seconds to wait:

	{"id": "req_001", "status": "error", "category": "validation", "code": 400, "error": "invalid request: maxResults: must be between 10 and 10000"}
	{"id": "req_009", "status": "error", "category": "rate_limited", "code": 429, "error": "Too many requests", "retry_after": 6}

Requests are processed one at a time, in arrival order.
*/
package server

import (
	"github.com/bastiangx/wordhunt/pkg/analyzer"
	"github.com/bastiangx/wordhunt/pkg/crawler"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/search"
	"github.com/bastiangx/wordhunt/pkg/session"
)

// Actions understood by the server.
const (
	ActionSearch     = "search"
	ActionSearchBoth = "search_both"
	ActionValidate   = "validate"
	ActionFeedback   = "feedback"
	ActionStats      = "stats"
	ActionReset      = "reset"
	ActionHealth     = "health"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusReady = "ready"

	// CategoryRateLimited extends the search error categories.
	CategoryRateLimited search.Category = "rate_limited"
	// CategoryBadRequest marks malformed or unknown requests.
	CategoryBadRequest search.Category = "bad_request"
)

// Request is one IPC message. Fields beyond ID, Action and Client depend on the action.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
	Client string `msgpack:"client,omitempty"`

	Mode       string           `msgpack:"mode,omitempty"`
	Filters    filters.Spec     `msgpack:"filters"`
	MaxResults int              `msgpack:"max,omitempty"`
	Depth      int              `msgpack:"depth,omitempty"`
	Words      []string         `msgpack:"words,omitempty"`
	Feedback   *search.Feedback `msgpack:"feedback,omitempty"`
}

// Response is a successful reply. Only the fields of the request's action are set.
type Response struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`

	Words       []model.WordResult        `msgpack:"words,omitempty"`
	Plan        *analyzer.Plan            `msgpack:"plan,omitempty"`
	Crawl       *crawler.Stats            `msgpack:"crawl,omitempty"`
	Both        *search.BothResponse      `msgpack:"both,omitempty"`
	Validations []search.WordValidation   `msgpack:"validations,omitempty"`
	Session     *session.Stats            `msgpack:"session,omitempty"`
	Learning    *filters.LearningSnapshot `msgpack:"learning,omitempty"`

	Count     int   `msgpack:"c"`
	TimeTaken int64 `msgpack:"t"`
}

// ErrorResponse is a failed reply.
type ErrorResponse struct {
	ID         string          `msgpack:"id"`
	Status     string          `msgpack:"status"`
	Category   search.Category `msgpack:"category"`
	Code       int             `msgpack:"code"`
	Error      string          `msgpack:"error"`
	RetryAfter int             `msgpack:"retry_after,omitempty"`
}

// StatusMessage is the ready signal and the health reply.
type StatusMessage struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}
