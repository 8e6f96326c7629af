package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/logging"
	"github.com/chemassist/assistant/backend/internal/model/chat"
	"github.com/chemassist/assistant/backend/internal/service/assets"
	chatservice "github.com/chemassist/assistant/backend/internal/service/chat"
)

var quitCommands = map[string]bool{"quit": true, "exit": true}

// Options configures a console run.
type Options struct {
	In          io.Reader
	Out         io.Writer
	ShowSidebar bool
	Logger      *zap.Logger
}

// Console runs one chat session against a line-oriented terminal.
type Console struct {
	chat        *chatservice.Service
	assets      *assets.Resolver
	in          *bufio.Scanner
	out         io.Writer
	showSidebar bool
	styles      Styles
	logger      *zap.Logger
}

// New creates a console over the shared services.
func New(chatSvc *chatservice.Service, resolver *assets.Resolver, opts Options) *Console {
	return &Console{
		chat:        chatSvc,
		assets:      resolver,
		in:          bufio.NewScanner(opts.In),
		out:         opts.Out,
		showSidebar: opts.ShowSidebar,
		styles:      NewStyles(opts.Out),
		logger:      logging.OrNop(opts.Logger),
	}
}

// Run creates a session and processes input lines until quit, exit, EOF
// or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	if c.showSidebar && c.assets != nil {
		c.print(RenderSidebar(c.styles, c.assets.Sidebar()) + "\n\n")
	}

	session, err := c.chat.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	c.logger.Info("console session started", zap.String("session", session.ID))

	c.print(RenderMenu(c.styles, chatservice.DefaultMenu()))
	if cmd := c.chat.MenuCommand(); cmd != "" {
		c.print(c.styles.Muted.Render(fmt.Sprintf("Type %q to return to this menu, \"quit\" to leave.", cmd)) + "\n")
	}
	mode := session.Mode

	lines, readErr := c.readLines(ctx)

	for {
		c.print(c.styles.Prompt.Render(c.chat.Prompt(mode)) + " ")

		var raw string
		select {
		case <-ctx.Done():
			c.print("\n")
			c.logger.Info("console interrupted", zap.String("session", session.ID))
			return nil
		case next, ok := <-lines:
			if !ok {
				c.print("\n")
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			raw = next
		}

		line := strings.TrimSpace(raw)
		if quitCommands[strings.ToLower(line)] {
			c.logger.Info("console session ended", zap.String("session", session.ID))
			return nil
		}

		turn, err := c.chat.Submit(ctx, session.ID, line)
		if err != nil {
			return fmt.Errorf("submit input: %w", err)
		}

		c.print(RenderEntries(c.styles, turn.Entries))
		c.print(RenderNotice(c.styles, turn.Notice))

		if turn.Mode == chat.ModeMenu && mode != chat.ModeMenu {
			c.print(RenderMenu(c.styles, chatservice.DefaultMenu()))
		}
		mode = turn.Mode
	}
}

// readLines scans input on its own goroutine so Run can stop on ctx while
// a read is blocked. The error channel receives the scanner error before
// lines is closed.
func (c *Console) readLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for c.in.Scan() {
			select {
			case lines <- c.in.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- c.in.Err()
	}()

	return lines, readErr
}

func (c *Console) print(s string) {
	if s == "" {
		return
	}
	if _, err := io.WriteString(c.out, s); err != nil {
		c.logger.Debug("console write failed", zap.Error(err))
	}
}
