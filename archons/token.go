package archons

import (
	"strconv"
	"strings"

	"github.com/dzonerzy/go-archons/internal/pool"
)

type tokenKind uint8

const (
	tokenValue tokenKind = iota
	tokenLong
	tokenShort
	tokenDoubleDash
)

// token is one classified command-line argument.
type token struct {
	kind tokenKind
	raw  string
	// name is the long name, or the cluster of short names without the dash.
	name string
	// inline holds the text after '=' of a long token.
	inline    string
	hasInline bool
	// literal marks values following "--"; they never select subcommands.
	literal bool
	// negative marks short tokens that parse as a negative number.
	negative bool
}

var tokenPool = pool.NewPoolWithReset(
	func() *[]token {
		s := make([]token, 0, 16)
		return &s
	},
	func(s *[]token) {
		*s = (*s)[:0]
	},
)

// tokenize classifies args into buf.
func tokenize(args []string, buf []token) []token {
	literal := false
	for _, arg := range args {
		switch {
		case literal:
			buf = append(buf, token{kind: tokenValue, raw: arg, literal: true})
		case arg == "--":
			literal = true
			buf = append(buf, token{kind: tokenDoubleDash, raw: arg})
		case strings.HasPrefix(arg, "--"):
			name, inline, has := strings.Cut(arg[2:], "=")
			buf = append(buf, token{kind: tokenLong, raw: arg, name: name, inline: inline, hasInline: has})
		case len(arg) > 1 && arg[0] == '-':
			buf = append(buf, token{kind: tokenShort, raw: arg, name: arg[1:], negative: isNumber(arg)})
		default:
			// includes a lone "-", conventionally stdin
			buf = append(buf, token{kind: tokenValue, raw: arg})
		}
	}
	return buf
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
