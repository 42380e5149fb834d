// Package terminal runs an intake conversation in an interactive terminal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/engine"
	"github.com/ashureev/talentscout/internal/interview"
)

// RestartCommand starts a finished interview over.
const RestartCommand = "/restart"

var (
	assistantPrefix = color.New(color.FgCyan, color.Bold).SprintFunc()
	userPrefix      = color.New(color.FgGreen, color.Bold).SprintFunc()
	noticeColor     = color.New(color.FgRed).SprintFunc()
	advisoryColor   = color.New(color.FgMagenta).SprintFunc()
	hintColor       = color.New(color.FgYellow).SprintFunc()
)

// Client drives one session from a line-oriented input stream.
type Client struct {
	svc *interview.Service
	in  *bufio.Scanner
	out io.Writer
}

// NewClient creates a terminal client reading from in and writing to out.
func NewClient(svc *interview.Service, in io.Reader, out io.Writer) *Client {
	return &Client{svc: svc, in: bufio.NewScanner(in), out: out}
}

// Run starts a session and processes lines until the input ends or ctx is
// cancelled. It returns the ID of the session it drove.
func (c *Client) Run(ctx context.Context) (string, error) {
	ctx = interview.WithChannel(ctx, interview.ChannelTerminal)

	sess, err := c.svc.Start(ctx)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	c.printTurns(sess.Turns)

	for {
		if ctx.Err() != nil {
			return sess.ID, ctx.Err()
		}
		fmt.Fprint(c.out, userPrefix("You: "))
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return sess.ID, fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, hintColor("Goodbye."))
			return sess.ID, nil
		}
		line := c.in.Text()

		if strings.TrimSpace(line) == RestartCommand {
			if err := c.restart(ctx, sess.ID); err != nil {
				return sess.ID, err
			}
			continue
		}

		if err := c.turn(ctx, sess.ID, line); err != nil {
			return sess.ID, err
		}
	}
}

func (c *Client) turn(ctx context.Context, sessionID, line string) error {
	_, res, err := c.svc.Submit(ctx, sessionID, line)
	switch {
	case errors.Is(err, engine.ErrEmptyInput):
		return nil
	case errors.Is(err, engine.ErrSessionFinished):
		c.printAssistant(res.Reply)
		fmt.Fprintln(c.out, hintColor("Type "+RestartCommand+" to start over or press Ctrl-D to quit."))
		return nil
	case err != nil:
		return fmt.Errorf("submit turn: %w", err)
	}

	for _, t := range res.Appended {
		if t.Speaker == domain.SpeakerAssistant {
			c.printAssistant(t.Text)
		}
	}
	if res.ValidationNotice != "" {
		fmt.Fprintln(c.out, noticeColor(res.ValidationNotice))
	}
	if res.SentimentNote != "" {
		fmt.Fprintln(c.out, advisoryColor(res.SentimentNote))
	}
	if res.Finished {
		fmt.Fprintln(c.out, hintColor("Type "+RestartCommand+" to start over or press Ctrl-D to quit."))
	}
	return nil
}

func (c *Client) restart(ctx context.Context, sessionID string) error {
	sess, err := c.svc.Restart(ctx, sessionID)
	if errors.Is(err, engine.ErrNotFinished) {
		fmt.Fprintln(c.out, hintColor("Restart is available once the interview is finished."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("restart session: %w", err)
	}
	c.printTurns(sess.Turns)
	return nil
}

func (c *Client) printTurns(turns []domain.Turn) {
	for _, t := range turns {
		if t.Speaker == domain.SpeakerAssistant {
			c.printAssistant(t.Text)
			continue
		}
		fmt.Fprintln(c.out, userPrefix("You:"), t.Text)
	}
}

func (c *Client) printAssistant(text string) {
	fmt.Fprintln(c.out, assistantPrefix("TalentScout:"), text)
}
