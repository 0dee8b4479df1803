package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/types"
)

// Headliner finds the headline behind a symbol's session move.
type Headliner interface {
	Headline(ctx context.Context, symbol string) (types.Selection, error)
}

// Deps are the long-lived collaborators a Handler dispatches to.
type Deps struct {
	Resolver    interfaces.Resolver
	News        Headliner // optional
	Prefix      string
	Description string
}

type command struct {
	usage string
	help  string
	run   func(h *Handler, ctx context.Context, args []string, line string) string
}

// Handler turns chat lines into replies. It knows nothing about the chat
// transport; callers feed it message text and send back what it returns.
type Handler struct {
	deps     Deps
	commands map[string]command
}

func New(deps Deps) *Handler {
	if deps.Prefix == "" {
		deps.Prefix = "!"
	}
	return &Handler{
		deps: deps,
		commands: map[string]command{
			"who":     {usage: "who TICKER", help: "company name for a ticker", run: (*Handler).who},
			"refresh": {usage: "refresh TICKER", help: "look the company name up again, ignoring the cache", run: (*Handler).refresh},
			"quote":   {usage: "quote TICKER", help: "company name, today's move and the headline behind it", run: (*Handler).quote},
			"news":    {usage: "news TICKER", help: "the headline that best explains today's move", run: (*Handler).news},
			"echo":    {usage: "echo TEXT", help: "repeat the message", run: (*Handler).echo},
			"help":    {usage: "help", help: "list commands", run: (*Handler).help},
		},
	}
}

// Handle dispatches one line. handled is false when the line is not a
// command for this bot and should be ignored.
func (h *Handler) Handle(ctx context.Context, line string) (reply string, handled bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, h.deps.Prefix) {
		return "", false
	}

	fields := strings.Fields(strings.TrimPrefix(line, h.deps.Prefix))
	if len(fields) == 0 {
		return "", false
	}

	name := strings.ToLower(fields[0])
	cmd, ok := h.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: %s. Try %shelp", fields[0], h.deps.Prefix), true
	}

	logger.Debug(ctx, "Handling command", "command", name, "args", len(fields)-1)
	return cmd.run(h, ctx, fields[1:], line), true
}

func (h *Handler) usage(name string) string {
	return "Usage: " + h.deps.Prefix + h.commands[name].usage
}

func (h *Handler) who(ctx context.Context, args []string, _ string) string {
	if len(args) != 1 {
		return h.usage("who")
	}
	return h.resolveReply(ctx, args[0], false)
}

func (h *Handler) refresh(ctx context.Context, args []string, _ string) string {
	if len(args) != 1 {
		return h.usage("refresh")
	}
	return h.resolveReply(ctx, args[0], true)
}

func (h *Handler) resolveReply(ctx context.Context, symbol string, force bool) string {
	res, err := h.deps.Resolver.Resolve(ctx, symbol, force)
	if err != nil {
		return lookupFailed(ctx, symbol, err)
	}
	if !res.Resolved() {
		return unresolved(res.Symbol)
	}
	return res.Name
}

func (h *Handler) quote(ctx context.Context, args []string, _ string) string {
	if len(args) != 1 {
		return h.usage("quote")
	}

	res, err := h.deps.Resolver.Resolve(ctx, args[0], false)
	if err != nil {
		return lookupFailed(ctx, args[0], err)
	}
	if !res.Resolved() {
		logger.Warn(ctx, "Invalid stock ticker", "symbol", res.Symbol)
		return unresolved(res.Symbol)
	}

	header := fmt.Sprintf("%s (%s)", res.Name, res.Symbol)
	if h.deps.News == nil {
		return header
	}

	sel, err := h.deps.News.Headline(ctx, res.Symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Quote headline failed", err, "symbol", res.Symbol)
		return header
	}
	header = fmt.Sprintf("%s %+.2f%%", header, sel.SignedPercent)
	if sel.Found() {
		return header + "\n" + formatSelection(sel)
	}
	return header
}

func (h *Handler) news(ctx context.Context, args []string, _ string) string {
	if len(args) != 1 {
		return h.usage("news")
	}
	symbol := types.NormalizeSymbol(args[0])
	if h.deps.News == nil {
		return "News is unavailable right now, try again later"
	}

	sel, err := h.deps.News.Headline(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "News command failed", err, "symbol", symbol)
		return fmt.Sprintf("Could not fetch news for %s, try again later", symbol)
	}
	switch {
	case sel.Unavailable:
		return "News is unavailable right now, try again later"
	case !sel.Found():
		return fmt.Sprintf("No headline matches %s's move (%+.2f%%) today", symbol, sel.SignedPercent)
	default:
		return formatSelection(sel)
	}
}

func (h *Handler) echo(_ context.Context, _ []string, line string) string {
	return "echo: " + line
}

func (h *Handler) help(_ context.Context, _ []string, _ string) string {
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	if h.deps.Description != "" {
		b.WriteString(h.deps.Description)
		b.WriteString("\n")
	}
	for _, name := range names {
		cmd := h.commands[name]
		fmt.Fprintf(&b, "%s%-16s %s\n", h.deps.Prefix, cmd.usage, cmd.help)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSelection(sel types.Selection) string {
	return fmt.Sprintf("%s\n%s", sel.Headline, sel.URL)
}

func unresolved(symbol string) string {
	return "Unable to resolve stock ticker: " + types.NormalizeSymbol(symbol)
}

func lookupFailed(ctx context.Context, symbol string, err error) string {
	logger.ErrorWithErr(ctx, "Name lookup failed", err, "symbol", symbol)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Lookup for %s timed out, try again later", types.NormalizeSymbol(symbol))
	}
	return fmt.Sprintf("Could not look up %s right now, try again later", types.NormalizeSymbol(symbol))
}
