package sentiment

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"ticker-bot/internal/interfaces"
)

const (
	// normalizationAlpha approximates the maximum expected sum of valences.
	normalizationAlpha = 15.0
	negationScalar     = -0.74
	boosterIncrement   = 0.293
)

// Lexicon scores text with a valence dictionary and normalises the sum to a
// compound polarity in [-1, 1], in the manner of VADER.
type Lexicon struct {
	valence map[string]float64
}

var _ interfaces.Scorer = (*Lexicon)(nil)

// NewLexicon returns a scorer over the built-in financial headline
// dictionary. Entries read from path, when given, override it.
func NewLexicon(path string) (*Lexicon, error) {
	l := &Lexicon{valence: defaultValence()}
	if path == "" {
		return l, nil
	}
	if err := l.load(path); err != nil {
		return nil, err
	}
	return l, nil
}

// load reads "word<TAB>valence[<TAB>...]" lines; the vader_lexicon.txt
// layout works as is.
func (l *Lexicon) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening lexicon: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return fmt.Errorf("lexicon %s line %d: expected word and valence", path, line)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("lexicon %s line %d: %w", path, line, err)
		}
		l.valence[strings.ToLower(fields[0])] = v
	}
	return sc.Err()
}

func (l *Lexicon) Score(_ context.Context, text string) (float64, error) {
	return l.Compound(text), nil
}

// Compound is the normalised polarity of text.
func (l *Lexicon) Compound(text string) float64 {
	words := tokenize(strings.ToLower(text))

	sum := 0.0
	for i, w := range words {
		v, ok := l.valence[w]
		if !ok {
			continue
		}
		// look back up to three words for boosters and negations
		for back := 1; back <= 3 && i-back >= 0; back++ {
			prev := words[i-back]
			if b, ok := boosters[prev]; ok && back == 1 {
				if v > 0 {
					v += b
				} else {
					v -= b
				}
			}
			if negations[prev] {
				v *= negationScalar
				break
			}
		}
		sum += v
	}
	return normalize(sum)
}

func normalize(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	score := sum / math.Sqrt(sum*sum+normalizationAlpha)
	return math.Max(-1, math.Min(1, score))
}

// tokenize splits on anything that is not a letter, digit, apostrophe or hyphen.
func tokenize(text string) []string {
	var (
		words   []string
		current strings.Builder
	)
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '-' {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, strings.Trim(current.String(), "'-"))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, strings.Trim(current.String(), "'-"))
	}
	return words
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true, "isn't": true,
	"wasn't": true, "don't": true, "doesn't": true, "didn't": true, "won't": true,
	"can't": true, "cannot": true, "fails": true, "nor": true,
}

var boosters = map[string]float64{
	"very": boosterIncrement, "sharply": boosterIncrement, "strongly": boosterIncrement,
	"significantly": boosterIncrement, "hugely": boosterIncrement, "massive": boosterIncrement,
	"record": boosterIncrement, "steep": boosterIncrement, "slightly": -boosterIncrement,
	"marginally": -boosterIncrement, "somewhat": -boosterIncrement,
}

// Built on the Loughran-McDonald positive and negative lists plus common
// market headline verbs.
func defaultValence() map[string]float64 {
	m := make(map[string]float64)
	set := func(v float64, words ...string) {
		for _, w := range words {
			m[w] = v
		}
	}
	set(3.0, "soar", "soars", "soared", "skyrocket", "skyrockets", "blowout", "boom")
	set(2.5, "surge", "surges", "surged", "rally", "rallies", "rallied", "jump", "jumps",
		"jumped", "beat", "beats", "upgrade", "upgraded", "outperform", "outperforms",
		"record", "breakthrough", "exceptional", "excellent", "tremendous")
	set(2.0, "gain", "gains", "gained", "rise", "rises", "rose", "climb", "climbs",
		"climbed", "strong", "strength", "profit", "profits", "profitable", "growth",
		"grew", "win", "wins", "won", "success", "successful", "boost", "boosts",
		"boosted", "approve", "approves", "approved", "bullish", "optimistic", "upbeat",
		"robust", "solid", "raise", "raises", "raised", "top", "tops", "topped")
	set(1.5, "improve", "improves", "improved", "improvement", "positive", "better",
		"benefit", "benefits", "favorable", "opportunity", "innovation", "innovative",
		"leader", "leading", "progress", "recover", "recovers", "recovery", "rebound",
		"rebounds", "expand", "expands", "expansion", "deal", "partnership", "dividend",
		"buyback", "good", "great", "higher")
	set(-1.5, "concern", "concerns", "challenge", "challenging", "uncertain",
		"uncertainty", "volatile", "volatility", "risk", "risks", "headwind", "headwinds",
		"pressure", "slow", "slowdown", "lower", "cut", "cuts", "delay", "delays",
		"delayed", "negative", "worse", "weak", "weakness", "difficult", "debt")
	set(-2.0, "fall", "falls", "fell", "drop", "drops", "dropped", "decline", "declines",
		"declined", "loss", "losses", "miss", "misses", "missed", "downgrade",
		"downgraded", "lawsuit", "sue", "sues", "sued", "probe", "investigation",
		"recall", "recalls", "layoff", "layoffs", "bearish", "warning", "warns",
		"disappoint", "disappoints", "disappointing", "underperform", "slide", "slides",
		"slid", "sink", "sinks", "sank", "fail", "failure", "fined", "penalty")
	set(-2.5, "plunge", "plunges", "plunged", "tumble", "tumbles", "tumbled", "slump",
		"slumps", "slumped", "crash", "crashes", "crashed", "fraud", "scandal",
		"bankruptcy", "bankrupt", "default", "defaults", "crisis", "worst", "recession")
	set(-3.0, "collapse", "collapses", "collapsed", "plummet", "plummets", "plummeted")
	return m
}
