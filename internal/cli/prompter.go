package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tendnotes/tend/internal/service"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// GroupDecision is the user's verdict on one proposed cleanup group.
type GroupDecision string

// Decisions a user can make per group.
const (
	DecisionComplete GroupDecision = "complete"
	DecisionSnooze   GroupDecision = "snooze"
	DecisionArchive  GroupDecision = "archive"
	DecisionSkip     GroupDecision = "skip"
)

// Prompter asks the user to confirm AI-proposed cleanup groups one at a
// time. Nothing is applied without an explicit decision.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a prompter over the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ConfirmGroup renders a proposed group and reads the user's decision.
func (p *Prompter) ConfirmGroup(ctx context.Context, group service.TaskGroup) (GroupDecision, error) {
	content := fmt.Sprintf("%s\n\n%d items\n%s",
		group.Rationale,
		len(group.ItemIDs),
		SubtleStyle.Render(strings.Join(group.ItemIDs, "\n")))
	fmt.Fprintln(p.out, RenderBox(group.Title, content))
	fmt.Fprint(p.out, FormatPrompt("[c]omplete / s[n]ooze / [a]rchive / [s]kip"))

	line, err := p.readLine(ctx)
	if err != nil {
		return DecisionSkip, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "c", "complete":
		return DecisionComplete, nil
	case "n", "snooze":
		return DecisionSnooze, nil
	case "a", "archive":
		return DecisionArchive, nil
	default:
		return DecisionSkip, nil
	}
}

// readLine reads one input line, respecting context cancellation. The
// blocked read goroutine is abandoned on cancel; it finishes harmlessly.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	type result struct {
		err  error
		line string
	}
	resultCh := make(chan result, 1)

	go func() {
		line, err := p.in.ReadString('\n')
		resultCh <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return "", res.err
		}
		return res.line, nil
	}
}
