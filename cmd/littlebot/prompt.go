package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mishioo/littlebot/internal/probe"
)

// stdinPrompter asks the operator how to handle a failed probe. Closed input
// (for example a non-interactive run with no tty) resolves to abort.
type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinPrompter(in io.Reader, out io.Writer) *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(in), out: out}
}

func (p *stdinPrompter) ConfirmFailure(ctx context.Context, probeErr error) (probe.Choice, error) {
	for {
		if err := ctx.Err(); err != nil {
			return probe.ChoiceAbort, err
		}

		fmt.Fprintf(p.out, "Probe request failed: %v\n", probeErr)
		fmt.Fprint(p.out, "[T]ry again, [C]ontinue anyway, or [A]bort? ")

		answer, err := p.readAnswer()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p.out, "aborting")
				return probe.ChoiceAbort, nil
			}
			return probe.ChoiceAbort, err
		}

		switch answer {
		case "t", "try":
			return probe.ChoiceRetry, nil
		case "c", "continue":
			return probe.ChoiceContinue, nil
		case "a", "abort":
			return probe.ChoiceAbort, nil
		}
	}
}

func (p *stdinPrompter) ConfirmStatus(ctx context.Context, statusCode int) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		fmt.Fprintf(p.out, "Probe got status %d from the target.\n", statusCode)
		fmt.Fprint(p.out, "Continue anyway? [y/N] ")

		answer, err := p.readAnswer()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p.out, "aborting")
				return false, nil
			}
			return false, err
		}

		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no", "":
			return false, nil
		}
	}
}

func (p *stdinPrompter) readAnswer() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}
