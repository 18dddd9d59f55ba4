package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bastiangx/wordhunt/pkg/filters"
)

// TimeoutError reports a search that ran past its deadline.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("search timed out after %s; try again with narrower filters or fewer results", e.After)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// UnexpectedError wraps anything that is neither a validation problem nor a timeout.
// Its message never includes the cause.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string { return "unexpected error while searching" }

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Category groups errors for callers.
type Category string

const (
	CategoryNone       Category = ""
	CategoryValidation Category = "validation"
	CategoryTimeout    Category = "timeout"
	CategoryUnexpected Category = "unexpected"
)

// Classified is the user-facing shape of an error.
type Classified struct {
	Category Category `json:"category" msgpack:"category" yaml:"category"`
	Status   int      `json:"status" msgpack:"status" yaml:"status"`
	Message  string   `json:"message" msgpack:"message" yaml:"message"`
}

// Classify maps err onto its category, an HTTP-style status and a safe message.
// Validation messages are passed through verbatim.
func Classify(err error) Classified {
	if err == nil {
		return Classified{Category: CategoryNone, Status: http.StatusOK}
	}
	var ve *filters.ValidationError
	if errors.As(err, &ve) {
		return Classified{Category: CategoryValidation, Status: http.StatusBadRequest, Message: ve.Error()}
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return Classified{Category: CategoryTimeout, Status: http.StatusRequestTimeout, Message: te.Error()}
	}
	return Classified{
		Category: CategoryUnexpected,
		Status:   http.StatusInternalServerError,
		Message:  "An unexpected error occurred. Please try again.",
	}
}
