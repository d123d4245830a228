// SPDX-License-Identifier: MPL-2.0

package infer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/topomap/topomap/internal/classify"
	"github.com/topomap/topomap/internal/javasrc"
)

// DefaultQualifier is the package segment that introduces messaging classes.
const DefaultQualifier = "kafka"

var (
	// ErrDegenerateName means the meaningful segment is empty. Such names
	// match no channel.
	ErrDegenerateName = errors.New("class name has no meaningful segment")
	// ErrNoRoleSuffix means the simple name does not contain the role suffix.
	ErrNoRoleSuffix = errors.New("class name lacks role suffix")
	// ErrNoRole means the class was classified as RoleNone.
	ErrNoRole = errors.New("class has no messaging role")
)

type (
	// Inferencer matches class identifiers to channels.
	Inferencer struct {
		qualifier string
		title     string
	}

	// Decomposition is the parsed meaningful part of a class name.
	Decomposition struct {
		Segment string
		Tokens  []string
	}
)

// New returns an Inferencer for the given package qualifier; empty selects
// DefaultQualifier.
func New(qualifier string) *Inferencer {
	if qualifier == "" {
		qualifier = DefaultQualifier
	}
	return &Inferencer{qualifier: qualifier, title: strings.ToUpper(qualifier[:1]) + qualifier[1:]}
}

// Decompose extracts the meaningful segment of id for role.
//
// The segment starts after the first package segment equal to the qualifier,
// or at the simple name when there is none, with a leading title-cased
// qualifier ("Kafka") removed. It ends at the last occurrence of the role
// suffix.
func (in *Inferencer) Decompose(id string, role classify.Role) (Decomposition, error) {
	suffix := role.Suffix()
	if suffix == "" {
		return Decomposition{}, ErrNoRole
	}
	simple := javasrc.SimpleName(id)
	if !strings.Contains(simple, suffix) {
		return Decomposition{}, fmt.Errorf("%w: %s has no %q", ErrNoRoleSuffix, simple, suffix)
	}

	start := in.segmentStart(id)
	if strings.HasPrefix(id[start:], in.title) {
		start += len(in.title)
	}
	end := strings.LastIndex(id, suffix)
	if end <= start {
		return Decomposition{}, fmt.Errorf("%w: %s", ErrDegenerateName, id)
	}

	segment := id[start:end]
	return Decomposition{Segment: segment, Tokens: Tokenize(segment)}, nil
}

// segmentStart is the offset just past "<qualifier>." or, failing that, the
// offset of the simple name.
func (in *Inferencer) segmentStart(id string) int {
	offset := 0
	for _, seg := range strings.Split(id, ".") {
		if seg == in.qualifier && offset+len(seg) < len(id) {
			return offset + len(seg) + 1
		}
		offset += len(seg) + 1
	}
	return len(id) - len(javasrc.SimpleName(id))
}

// Matches reports whether id, classified as role, belongs to channel.
// Degenerate and role-less names never match.
func (in *Inferencer) Matches(channel, id string, role classify.Role) bool {
	d, err := in.Decompose(id, role)
	if err != nil {
		return false
	}
	return MatchTokens(channel, d.Tokens)
}

// MatchTokens reports whether every token occurs in the lower-cased channel.
// An empty token list never matches.
func MatchTokens(channel string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	channel = strings.ToLower(channel)
	count := 0
	for _, tok := range tokens {
		if strings.Contains(channel, strings.ToLower(tok)) {
			count++
		}
	}
	return count >= len(tokens)
}

// Tokenize splits s before every upper-case letter. A leading upper-case
// letter does not produce an empty first token.
func Tokenize(s string) []string {
	var tokens []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			tokens = append(tokens, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}
