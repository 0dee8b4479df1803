package news

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"ticker-bot/internal/api"
	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/types"
)

// ClusterFetcher reads a company-news endpoint that answers with a
// JavaScript object literal of clusters:
//
//	// [{clusters:[{id:"1",a:[{s:"Reuters",t:"...",u:"..."}]},{id:-1}]}]
//
// Keys are unquoted, strings may use \x escapes and trailing commas occur,
// so the payload is normalised and then decoded as YAML flow syntax.
type ClusterFetcher struct {
	client  *api.Client
	baseURL string
}

var _ interfaces.HeadlineFetcher = (*ClusterFetcher)(nil)

// NewClusterFetcher uses baseURL as a {symbol} template, or appends
// q=<symbol>&output=json when the template is absent.
func NewClusterFetcher(client *api.Client, baseURL string) *ClusterFetcher {
	return &ClusterFetcher{client: client, baseURL: baseURL}
}

func (f *ClusterFetcher) FetchClusters(ctx context.Context, symbol string) (*types.ClusterResponse, error) {
	resp, err := f.client.GET(ctx, f.requestURL(symbol), api.FeedHeaders())
	if err != nil {
		return nil, err
	}
	return ParseClusters(resp.Body)
}

func (f *ClusterFetcher) requestURL(symbol string) string {
	if strings.Contains(f.baseURL, "{symbol}") {
		return strings.ReplaceAll(f.baseURL, "{symbol}", url.QueryEscape(symbol))
	}
	q := url.Values{}
	q.Set("q", symbol)
	q.Set("output", "json")
	sep := "?"
	if strings.Contains(f.baseURL, "?") {
		sep = "&"
	}
	return f.baseURL + sep + q.Encode()
}

// ParseClusters decodes a lenient cluster payload. An empty body is an empty
// response; anything that still fails to decode is an error.
func ParseClusters(body []byte) (*types.ClusterResponse, error) {
	body = stripXSSIPrefix(body)
	if len(body) == 0 {
		return &types.ClusterResponse{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(normaliseObjectLiteral(body), &doc); err != nil {
		return nil, fmt.Errorf("decoding clusters: %w", err)
	}

	root := firstMapping(&doc)
	if root == nil {
		return nil, errors.New("decoding clusters: no object in payload")
	}

	var out types.ClusterResponse
	if err := root.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding clusters: %w", err)
	}
	return &out, nil
}

// firstMapping finds the response object, unwrapping documents and arrays.
func firstMapping(n *yaml.Node) *yaml.Node {
	switch n.Kind {
	case yaml.MappingNode:
		return n
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if m := firstMapping(c); m != nil {
				return m
			}
		}
	}
	return nil
}

func stripXSSIPrefix(b []byte) []byte {
	b = bytes.TrimSpace(b)
	b = bytes.TrimPrefix(b, []byte(")]}'"))
	b = bytes.TrimSpace(b)
	for bytes.HasPrefix(b, []byte("//")) {
		b = bytes.TrimSpace(b[2:])
	}
	return b
}

// normaliseObjectLiteral quotes bare object keys, rewrites single-quoted
// strings as double-quoted ones and drops trailing commas. String contents
// are copied untouched apart from quote escapes.
func normaliseObjectLiteral(in []byte) []byte {
	var (
		out  bytes.Buffer
		prev byte // last significant byte written outside strings
	)
	out.Grow(len(in) + len(in)/8)

	for i := 0; i < len(in); i++ {
		c := in[i]
		switch {
		case c == '"' || c == '\'':
			i = copyString(&out, in, i)
			prev = '"'

		case c == ',':
			j := skipSpace(in, i+1)
			if j < len(in) && (in[j] == '}' || in[j] == ']') {
				continue
			}
			out.WriteByte(c)
			prev = c

		case isIdentStart(c) && (prev == '{' || prev == ','):
			j := i
			for j < len(in) && isIdentPart(in[j]) {
				j++
			}
			k := skipSpace(in, j)
			if k < len(in) && in[k] == ':' {
				out.WriteByte('"')
				out.Write(in[i:j])
				out.WriteByte('"')
			} else {
				out.Write(in[i:j])
			}
			i = j - 1
			prev = 'a'

		case c == '\t':
			out.WriteByte(' ')

		default:
			out.WriteByte(c)
			if !isSpace(c) {
				prev = c
			}
		}
	}
	return out.Bytes()
}

// copyString writes the string literal starting at in[start] as a
// double-quoted string and returns the index of its closing quote.
func copyString(out *bytes.Buffer, in []byte, start int) int {
	quote := in[start]
	out.WriteByte('"')
	for i := start + 1; i < len(in); i++ {
		c := in[i]
		switch {
		case c == '\\' && i+1 < len(in):
			i = copyEscape(out, in, i)
		case c == quote:
			out.WriteByte('"')
			return i
		case c == '"':
			// only reachable inside a single-quoted string
			out.WriteString(`\"`)
		default:
			out.WriteByte(c)
		}
	}
	out.WriteByte('"')
	return len(in)
}

// copyEscape rewrites the escape sequence at in[i] into one YAML's
// double-quoted scalars accept and returns the index of its last byte.
// JavaScript allows escapes YAML rejects: \/ and \' stand for the bare
// character, a backslash before a newline continues the line, any other
// unknown escape is the character itself, and non-BMP characters arrive as
// UTF-16 surrogate pairs.
func copyEscape(out *bytes.Buffer, in []byte, i int) int {
	next := in[i+1]
	switch next {
	case '"', '\\', '0', 'b', 'f', 'n', 'r', 't', 'v', 'x':
		out.WriteByte('\\')
		out.WriteByte(next)
	case 'u':
		hi, ok := hexRune(in, i+2)
		if !ok {
			out.WriteString(`\\u`)
			break
		}
		if utf16.IsSurrogate(hi) {
			if i+11 < len(in) && in[i+6] == '\\' && in[i+7] == 'u' {
				if lo, ok := hexRune(in, i+8); ok {
					if r := utf16.DecodeRune(hi, lo); r != utf8.RuneError {
						out.WriteRune(r)
						return i + 11
					}
				}
			}
			out.WriteRune(utf8.RuneError)
			return i + 5
		}
		out.WriteString(`\u`)
		out.Write(in[i+2 : i+6])
		return i + 5
	case '\n':
	case '\r':
		if i+2 < len(in) && in[i+2] == '\n' {
			return i + 2
		}
	default:
		// \/, \' and escapes such as \d in JavaScript
		out.WriteByte(next)
	}
	return i + 1
}

// hexRune reads four hex digits at in[at].
func hexRune(in []byte, at int) (rune, bool) {
	if at+4 > len(in) {
		return 0, false
	}
	n, err := strconv.ParseUint(string(in[at:at+4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

func skipSpace(in []byte, i int) int {
	for i < len(in) && isSpace(in[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
