// Package collector implements the line-oriented prompt loop that gathers
// addresses from an operator.
package collector

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/bbw-directory/internal/directory"
)

// Prompts shown to the operator.
const (
	AddPrompt     = "add an address? (y/n): "
	AddressPrompt = "enter the URL to scrape: "
)

type state int

const (
	statePrompting state = iota
	stateDone
)

// Collector reads answers from in and writes prompts to out.
type Collector struct {
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger
}

// New returns a Collector over the given streams.
func New(in io.Reader, out io.Writer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Collect runs the prompt loop until the operator declines to add another
// address or input ends. It returns seed followed by every entered address.
func (c *Collector) Collect(seed []directory.Address) ([]directory.Address, error) {
	pending := append([]directory.Address(nil), seed...)

	for st := statePrompting; st != stateDone; {
		answer, ok, err := c.ask(AddPrompt)
		if err != nil {
			return pending, err
		}
		if !ok || !strings.EqualFold(answer, "y") {
			st = stateDone
			continue
		}

		address, ok, err := c.ask(AddressPrompt)
		if err != nil {
			return pending, err
		}
		if !ok {
			st = stateDone
			continue
		}
		pending = append(pending, address)
		c.logger.Debug("address added", zap.String("address", address))
	}

	return pending, nil
}

// ask writes prompt and reads one line. ok is false once input is exhausted.
func (c *Collector) ask(prompt string) (string, bool, error) {
	if _, err := fmt.Fprint(c.out, prompt); err != nil {
		return "", false, fmt.Errorf("write prompt: %w", err)
	}
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", false, fmt.Errorf("read answer: %w", err)
		}
		return "", false, nil
	}
	return strings.TrimSpace(c.in.Text()), true, nil
}
