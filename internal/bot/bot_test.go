package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ticker-bot/internal/types"
)

type fakeResolver struct {
	names  map[string]string
	err    error
	forced []string
}

func (f *fakeResolver) Resolve(_ context.Context, symbol string, force bool) (types.Resolution, error) {
	symbol = types.NormalizeSymbol(symbol)
	if force {
		f.forced = append(f.forced, symbol)
	}
	if f.err != nil {
		return types.Resolution{Symbol: symbol}, f.err
	}
	name, ok := f.names[symbol]
	if !ok {
		name = types.NotAvailable
	}
	return types.Resolution{Symbol: symbol, Name: name}, nil
}

type fakeHeadliner struct {
	sel types.Selection
	err error
}

func (f fakeHeadliner) Headline(_ context.Context, symbol string) (types.Selection, error) {
	sel := f.sel
	sel.Symbol = symbol
	return sel, f.err
}

func newHandler(news Headliner) (*Handler, *fakeResolver) {
	r := &fakeResolver{names: map[string]string{"AAPL": "Apple Inc."}}
	return New(Deps{Resolver: r, News: news, Prefix: "!", Description: "test bot"}), r
}

func TestHandleIgnoresNonCommands(t *testing.T) {
	h, _ := newHandler(nil)
	for _, line := range []string{"hello there", "", "   ", "!"} {
		if reply, handled := h.Handle(context.Background(), line); handled {
			t.Errorf("Expected %q to be ignored, got %q", line, reply)
		}
	}
}

func TestWho(t *testing.T) {
	h, _ := newHandler(nil)
	ctx := context.Background()

	tests := []struct {
		line, want string
	}{
		{"!who aapl", "Apple Inc."},
		{"!WHO AAPL", "Apple Inc."},
		{"!who zzzz", "Unable to resolve stock ticker: ZZZZ"},
		{"!who", "Usage: !who TICKER"},
		{"!who a b", "Usage: !who TICKER"},
	}
	for _, tt := range tests {
		reply, handled := h.Handle(ctx, tt.line)
		if !handled || reply != tt.want {
			t.Errorf("Handle(%q) = %q %v, want %q", tt.line, reply, handled, tt.want)
		}
	}
}

func TestWhoLookupFailure(t *testing.T) {
	h, r := newHandler(nil)
	r.err = errors.New("dial tcp: connection refused")

	reply, _ := h.Handle(context.Background(), "!who msft")
	if reply != "Could not look up MSFT right now, try again later" {
		t.Errorf("Unexpected reply %q", reply)
	}

	r.err = context.DeadlineExceeded
	if reply, _ := h.Handle(context.Background(), "!who msft"); !strings.Contains(reply, "timed out") {
		t.Errorf("Expected timeout reply, got %q", reply)
	}
}

func TestRefreshForces(t *testing.T) {
	h, r := newHandler(nil)
	reply, _ := h.Handle(context.Background(), "!refresh aapl")
	if reply != "Apple Inc." {
		t.Errorf("Unexpected reply %q", reply)
	}
	if len(r.forced) != 1 || r.forced[0] != "AAPL" {
		t.Errorf("Expected forced resolve of AAPL, got %v", r.forced)
	}
}

func TestQuote(t *testing.T) {
	sel := types.Selection{SignedPercent: 1.5, Headline: "Apple rallies", URL: "https://x.test/a", Score: 0.6}
	h, _ := newHandler(fakeHeadliner{sel: sel})

	reply, _ := h.Handle(context.Background(), "!quote aapl")
	want := "Apple Inc. (AAPL) +1.50%\nApple rallies\nhttps://x.test/a"
	if reply != want {
		t.Errorf("Expected %q, got %q", want, reply)
	}

	if reply, _ := h.Handle(context.Background(), "!quote nope"); reply != "Unable to resolve stock ticker: NOPE" {
		t.Errorf("Unexpected reply for unknown ticker %q", reply)
	}
}

func TestQuoteWithoutHeadline(t *testing.T) {
	h, _ := newHandler(fakeHeadliner{err: errors.New("feed down")})
	if reply, _ := h.Handle(context.Background(), "!quote aapl"); reply != "Apple Inc. (AAPL)" {
		t.Errorf("Expected bare quote on news failure, got %q", reply)
	}

	h, _ = newHandler(nil)
	if reply, _ := h.Handle(context.Background(), "!quote aapl"); reply != "Apple Inc. (AAPL)" {
		t.Errorf("Expected bare quote without news, got %q", reply)
	}
}

func TestNews(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		news Headliner
		want string
	}{
		{"found", fakeHeadliner{sel: types.Selection{SignedPercent: -2, Headline: "Apple slides", URL: "u"}}, "Apple slides\nu"},
		{"no winner", fakeHeadliner{sel: types.Selection{SignedPercent: -2}}, "No headline matches AAPL's move (-2.00%) today"},
		{"unavailable", fakeHeadliner{sel: types.Selection{Unavailable: true}}, "News is unavailable right now, try again later"},
		{"not configured", nil, "News is unavailable right now, try again later"},
		{"error", fakeHeadliner{err: errors.New("boom")}, "Could not fetch news for AAPL, try again later"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHandler(tt.news)
			if reply, _ := h.Handle(ctx, "!news aapl"); reply != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, reply)
			}
		})
	}
}

func TestEchoHelpAndUnknown(t *testing.T) {
	h, _ := newHandler(nil)
	ctx := context.Background()

	if reply, _ := h.Handle(ctx, "!echo hi there"); reply != "echo: !echo hi there" {
		t.Errorf("Unexpected echo %q", reply)
	}

	help, _ := h.Handle(ctx, "!help")
	if !strings.HasPrefix(help, "test bot\n") {
		t.Errorf("Expected description first, got %q", help)
	}
	for _, cmd := range []string{"!who", "!quote", "!news", "!refresh", "!echo", "!help"} {
		if !strings.Contains(help, cmd) {
			t.Errorf("Expected help to mention %s", cmd)
		}
	}

	if reply, handled := h.Handle(ctx, "!chart aapl"); !handled || reply != "Unknown command: chart. Try !help" {
		t.Errorf("Unexpected unknown command reply %q %v", reply, handled)
	}
}

func TestCustomPrefix(t *testing.T) {
	h := New(Deps{Resolver: &fakeResolver{names: map[string]string{"IBM": "IBM"}}, Prefix: "$"})
	if reply, handled := h.Handle(context.Background(), "$who ibm"); !handled || reply != "IBM" {
		t.Errorf("Unexpected reply %q %v", reply, handled)
	}
	if _, handled := h.Handle(context.Background(), "!who ibm"); handled {
		t.Error("Expected other prefixes to be ignored")
	}
}
