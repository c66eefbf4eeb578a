package engine

import (
	"strings"

	"github.com/practissac/go-certificate/internal/config"
)

// ParameterSet maps each recognised query key to its trimmed value.
// Keys that were absent or blank are not present.
type ParameterSet map[string]string

// Get returns the value for key, or "" when it was not provided.
func (p ParameterSet) Get(key string) string {
	return p[key]
}

// Has reports whether key was provided with a non-blank value.
func (p ParameterSet) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// ReadParameters extracts the recognised keys from a raw query string.
// Pairs are split on "&" only, so ";" is ordinary value text. For repeated
// keys the first value wins.
func ReadParameters(rawQuery string) ParameterSet {
	recognized := make(map[string]bool, len(config.RecognizedParams))
	for _, key := range config.RecognizedParams {
		recognized[key] = true
	}

	params := make(ParameterSet, len(config.RecognizedParams))
	seen := make(map[string]bool, len(config.RecognizedParams))
	for _, pair := range strings.Split(strings.TrimPrefix(rawQuery, config.QueryPrefix), config.QueryPairSep) {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, config.QueryKeyValueSep)
		key := decodeQueryComponent(rawKey)
		if !recognized[key] || seen[key] {
			continue
		}
		seen[key] = true
		if v := strings.TrimSpace(decodeQueryComponent(rawValue)); v != "" {
			params[key] = v
		}
	}
	return params
}

// decodeQueryComponent decodes form-encoded text leniently: "+" is a space,
// a valid %XX escape is a byte, and any other "%" is kept as written.
// Invalid UTF-8 becomes U+FFFD.
func decodeQueryComponent(s string) string {
	if !strings.ContainsAny(s, "+%") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			sb.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			sb.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			sb.WriteByte(c)
		}
	}
	return strings.ToValidUTF8(sb.String(), config.ReplacementChar)
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
