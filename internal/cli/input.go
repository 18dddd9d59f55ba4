package cli

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordhunt/pkg/search"
)

// InputHandler reads words interactively and prints their validation, for trying the
// validator against candidate names.
type InputHandler struct {
	validate func(words []string) []search.WordValidation
	printer  *Printer
	in       io.Reader
	prompt   io.Writer
}

// NewInputHandler creates a new CLI input handler
func NewInputHandler(validate func([]string) []search.WordValidation, printer *Printer, in io.Reader, prompt io.Writer) *InputHandler {
	return &InputHandler{validate: validate, printer: printer, in: in, prompt: prompt}
}

// Start reads lines until EOF. Each line may hold several words.
func (h *InputHandler) Start() error {
	io.WriteString(h.prompt, "type words, press enter to validate them (Ctrl+D to exit):\n> ")
	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		if words := strings.Fields(scanner.Text()); len(words) > 0 {
			h.handleInput(words)
		}
		io.WriteString(h.prompt, "> ")
	}
	io.WriteString(h.prompt, "\n")
	return scanner.Err()
}

// handleInput validates one line of words and prints the results.
func (h *InputHandler) handleInput(words []string) {
	start := time.Now()
	results := h.validate(words)
	log.Debugf("Took [ %v ] for %d words", time.Since(start), len(words))

	if err := h.printer.Validations(results); err != nil {
		log.Errorf("Printing results: %v", err)
	}
}
