package types

import (
	"strings"
	"time"
)

// NotAvailable is what a name lookup returns for a symbol it cannot resolve.
// It is a normal result, never an error, and is never cached.
const NotAvailable = "N/A"

// NormalizeSymbol is the canonical cache key for a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CacheRecord is one persisted symbol to name resolution.
type CacheRecord struct {
	Key       string    `json:"ticker"`
	Value     string    `json:"company_name"`
	WrittenAt time.Time `json:"cache_time"`
}

// Stale reports whether the record is older than ttl at now.
func (r CacheRecord) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.WrittenAt) > ttl
}

// Resolution is the outcome of resolving a symbol to a display name.
type Resolution struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Cached bool   `json:"cached"`
}

// Resolved is false when the lookup returned NotAvailable.
func (r Resolution) Resolved() bool {
	return r.Name != "" && r.Name != NotAvailable
}

// Article is one entry of a news cluster as delivered by a headline feed.
type Article struct {
	Source string `yaml:"s" json:"source"`
	Title  string `yaml:"t" json:"title"`
	URL    string `yaml:"u" json:"url"`
}

// Cluster groups related articles. An ID of EndOfListID marks the end of the feed.
type Cluster struct {
	ID       string    `yaml:"id" json:"id"`
	Articles []Article `yaml:"a" json:"articles,omitempty"`
}

// EndOfListID is the cluster id news feeds use as a terminator entry.
const EndOfListID = "-1"

// EndOfList reports whether the cluster is a terminator entry.
func (c Cluster) EndOfList() bool {
	return strings.TrimSpace(c.ID) == EndOfListID
}

// ClusterResponse is a loosely decoded headline feed.
type ClusterResponse struct {
	Clusters []Cluster `yaml:"clusters" json:"clusters"`
}

// Candidate is a headline retained for scoring.
type Candidate struct {
	Headline string `json:"headline"`
	URL      string `json:"url"`
	Source   string `json:"source"`
}

// ScoredCandidate is a candidate with its compound polarity in [-1, 1].
type ScoredCandidate struct {
	Candidate
	Score float64 `json:"score"`
}

// Selection is the headline chosen for a symbol and price direction.
type Selection struct {
	Symbol        string  `json:"symbol"`
	SignedPercent float64 `json:"signed_percent"`
	Headline      string  `json:"headline,omitempty"`
	URL           string  `json:"url,omitempty"`
	Source        string  `json:"source,omitempty"`
	Score         float64 `json:"score"`
	Scored        int     `json:"scored"`
	// Unavailable is set when the selector runs without a sentiment scorer.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Found reports whether a candidate beat the neutral threshold.
func (s Selection) Found() bool {
	return !s.Unavailable && s.Headline != ""
}

// WantPositive is the direction a selection favours for a price move.
func WantPositive(signedPercent float64) bool {
	return signedPercent >= 0
}
