// Package snapshot freezes a canonical byte buffer into a source literal the
// target system can embed, and parses such literals back.
//
// Every byte becomes a fixed-width lowercase token ("0x00".."0xff") joined
// with ", ". Encoding never routes through text decoding, so Decode(Encode(b))
// reproduces b exactly for every byte sequence, including the empty one.
package snapshot

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/lattice-substrate/refdoc-parity/bytebuf"
	"github.com/lattice-substrate/refdoc-parity/parityerr"
)

// DefaultName is the constant name the generator emits.
const DefaultName = "content"

// Dialect selects the declaration syntax wrapped around the tokens.
type Dialect string

const (
	// Zig emits `pub const NAME: []const u8 = &[_]u8{ ... };`.
	Zig Dialect = "zig"
	// Go emits a generated file declaring `var NAME = []byte{ ... }`.
	Go Dialect = "go"
)

// ParseDialect validates a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case Zig, Go:
		return d, nil
	default:
		return "", parityerr.New(parityerr.CLIUsage, "", fmt.Sprintf("unknown snapshot dialect %q", s))
	}
}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name is usable as a constant name in every dialect.
func ValidName(name string) bool {
	return identRE.MatchString(name)
}

// Literal is an encoded snapshot: a named sequence of byte tokens.
type Literal struct {
	Name    string
	Dialect Dialect
	// Package is the package clause for the Go dialect; ignored otherwise.
	Package string
	data    []byte
}

// Encode builds the literal for buf. The Go dialect package defaults to
// "main" when pkg is empty.
func Encode(buf bytebuf.Buffer, name string, d Dialect, pkg string) (Literal, error) {
	if !ValidName(name) {
		return Literal{}, parityerr.New(parityerr.SnapshotInvalid, "", fmt.Sprintf("invalid constant name %q", name))
	}
	if _, err := ParseDialect(string(d)); err != nil {
		return Literal{}, err
	}
	if d == Go {
		if pkg == "" {
			pkg = "main"
		}
		if !ValidName(pkg) {
			return Literal{}, parityerr.New(parityerr.SnapshotInvalid, "", fmt.Sprintf("invalid package name %q", pkg))
		}
	}
	return Literal{Name: name, Dialect: d, Package: pkg, data: buf.Bytes()}, nil
}

// Bytes returns a copy of the encoded bytes.
func (l Literal) Bytes() []byte {
	return append([]byte{}, l.data...)
}

// Len returns the number of byte tokens.
func (l Literal) Len() int {
	return len(l.data)
}

// Tokens returns the byte tokens in order.
func (l Literal) Tokens() []string {
	out := make([]string, len(l.data))
	for i, b := range l.data {
		out[i] = string(appendToken(nil, b))
	}
	return out
}

const hexDigits = "0123456789abcdef"

func appendToken(dst []byte, b byte) []byte {
	return append(dst, '0', 'x', hexDigits[b>>4], hexDigits[b&0x0f])
}

func appendTokens(dst []byte, data []byte) []byte {
	for i, b := range data {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = appendToken(dst, b)
	}
	return dst
}

// Render returns the complete source text for the literal, ending in '\n'.
func (l Literal) Render() []byte {
	// "0xNN, " per byte plus the declaration.
	out := make([]byte, 0, len(l.data)*6+128)
	switch l.Dialect {
	case Go:
		out = append(out, "// Code generated by refdoc-gen. DO NOT EDIT.\n\npackage "...)
		out = append(out, l.Package...)
		out = append(out, "\n\nvar "...)
		out = append(out, l.Name...)
		out = append(out, " = []byte{"...)
	default:
		out = append(out, "pub const "...)
		out = append(out, l.Name...)
		out = append(out, ": []const u8 = &[_]u8{"...)
	}
	if len(l.data) > 0 {
		out = append(out, ' ')
		out = appendTokens(out, l.data)
		out = append(out, ' ')
	}
	if l.Dialect == Go {
		out = append(out, "}\n"...)
	} else {
		out = append(out, "};\n"...)
	}
	return out
}

var (
	zigDeclRE = regexp.MustCompile(`pub\s+const\s+([A-Za-z_][A-Za-z0-9_]*)\s*:\s*\[\]const\s+u8\s*=\s*&\[_\]u8\s*\{`)
	goDeclRE  = regexp.MustCompile(`var\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*\[\]byte\s*\{`)
	goPkgRE   = regexp.MustCompile(`(?m)^package\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// Parse reads a literal previously produced by Render. It accepts either
// dialect and any whitespace between tokens, but every token must be a
// two-digit 0x-prefixed hex byte.
func Parse(src []byte) (Literal, error) {
	var l Literal
	var loc []int
	if loc = zigDeclRE.FindSubmatchIndex(src); loc != nil {
		l.Dialect = Zig
	} else if loc = goDeclRE.FindSubmatchIndex(src); loc != nil {
		l.Dialect = Go
		if m := goPkgRE.FindSubmatch(src); m != nil {
			l.Package = string(m[1])
		}
	} else {
		return Literal{}, parityerr.New(parityerr.SnapshotInvalid, "", "no byte sequence declaration found")
	}
	l.Name = string(src[loc[2]:loc[3]])

	body := src[loc[1]:]
	end := bytes.IndexByte(body, '}')
	if end < 0 {
		return Literal{}, parityerr.New(parityerr.SnapshotInvalid, "", "unterminated byte sequence")
	}
	data, err := parseTokens(body[:end])
	if err != nil {
		return Literal{}, err
	}
	l.data = data
	return l, nil
}

// Decode returns the bytes of the literal in src.
func Decode(src []byte) ([]byte, error) {
	l, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return l.data, nil
}

func parseTokens(body []byte) ([]byte, error) {
	fields := bytes.Split(body, []byte{','})
	out := make([]byte, 0, len(fields))
	for i, f := range fields {
		tok := bytes.TrimSpace(f)
		if len(tok) == 0 {
			// Allow an empty body or a single trailing comma.
			if i == len(fields)-1 {
				continue
			}
			return nil, parityerr.New(parityerr.SnapshotInvalid, "", fmt.Sprintf("empty token at position %d", i))
		}
		b, ok := parseToken(tok)
		if !ok {
			return nil, parityerr.New(parityerr.SnapshotInvalid, "", fmt.Sprintf("malformed token %q at position %d", tok, i))
		}
		out = append(out, b)
	}
	return out, nil
}

func parseToken(tok []byte) (byte, bool) {
	if len(tok) != 4 || tok[0] != '0' || (tok[1] != 'x' && tok[1] != 'X') {
		return 0, false
	}
	hi, ok1 := hexVal(tok[2])
	lo, ok2 := hexVal(tok[3])
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi<<4 | lo, true
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
