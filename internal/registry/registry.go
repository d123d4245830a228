// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/topomap/topomap/internal/javasrc"
)

const (
	// DefaultNamingClass is the SiteWhere topic naming class.
	DefaultNamingClass = "com.sitewhere.microservice.kafka.KafkaTopicNaming"
	// DefaultMarker selects the naming members that denote channels.
	DefaultMarker = "TOPIC"
)

var (
	// ErrRegistryAccess is the sentinel wrapped by RegistryAccessError.
	ErrRegistryAccess = errors.New("channel registry not accessible")

	// ErrUnsupportedExpr marks a constant whose initializer is not a literal,
	// a concatenation or a same-class constant reference.
	ErrUnsupportedExpr = errors.New("initializer cannot be evaluated statically")

	// ErrUnresolvedRef marks a reference to a constant the naming class does
	// not declare.
	ErrUnresolvedRef = errors.New("reference to undeclared constant")

	// ErrConstantCycle marks constants whose initializers refer to each other.
	ErrConstantCycle = errors.New("constant initializers form a cycle")

	// ErrNoValue marks a selected member without an initializer.
	ErrNoValue = errors.New("member has no initializer")
)

type (
	// Source yields the channel set for one run.
	Source interface {
		Channels(ctx context.Context) (Result, error)
	}

	// Result is an ordered, duplicate-free channel list plus the members that
	// matched the selection rule but could not be evaluated.
	Result struct {
		Channels []string
		Skipped  []Skipped
	}

	// Skipped is a selected member that produced no channel.
	Skipped struct {
		Member string
		Line   int
		Err    error
	}

	// Lookup finds type declarations by qualified name. *catalog.Catalog
	// satisfies it.
	Lookup interface {
		Lookup(name string) (*javasrc.TypeDecl, bool)
	}

	// DeclarationSource reads channels from the naming class declaration.
	DeclarationSource struct {
		Types  Lookup
		Class  string
		Marker string
	}

	// ListSource serves a fixed list of channels.
	ListSource struct {
		List []string
	}

	// RegistryAccessError reports a naming source that cannot be found, read
	// or parsed.
	RegistryAccessError struct {
		Source string
		Err    error
	}
)

// Error implements the error interface.
func (e *RegistryAccessError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("channel registry %q not accessible", e.Source)
	}
	return fmt.Sprintf("channel registry %q not accessible: %v", e.Source, e.Err)
}

// Unwrap returns ErrRegistryAccess and the underlying cause.
func (e *RegistryAccessError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRegistryAccess}
	}
	return []error{ErrRegistryAccess, e.Err}
}

// Error implements the error interface.
func (s Skipped) Error() string {
	return fmt.Sprintf("%s (line %d): %v", s.Member, s.Line, s.Err)
}

// Unwrap returns the evaluation error.
func (s Skipped) Unwrap() error { return s.Err }

// Channels implements Source.
func (s DeclarationSource) Channels(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	class := s.Class
	if class == "" {
		class = DefaultNamingClass
	}
	if s.Types == nil {
		return Result{}, &RegistryAccessError{Source: class, Err: errors.New("no type catalog")}
	}
	decl, ok := s.Types.Lookup(class)
	if !ok {
		return Result{}, &RegistryAccessError{Source: class, Err: errors.New("class not found in source tree")}
	}
	return ExtractChannels(decl, s.Marker), nil
}

// Channels implements Source.
func (s ListSource) Channels(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	var res Result
	seen := make(map[string]struct{}, len(s.List))
	for _, ch := range s.List {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		if _, dup := seen[ch]; dup {
			continue
		}
		seen[ch] = struct{}{}
		res.Channels = append(res.Channels, ch)
	}
	return res, nil
}

// ExtractChannels applies the selection rule to decl: members of type String
// whose name contains marker, in declaration order. Values that repeat an
// earlier channel are dropped. An empty marker selects DefaultMarker.
func ExtractChannels(decl *javasrc.TypeDecl, marker string) Result {
	if marker == "" {
		marker = DefaultMarker
	}
	ev := newEvaluator(decl)

	var res Result
	seen := make(map[string]struct{})
	for _, f := range decl.Fields {
		if !isString(f.Type) || !strings.Contains(f.Name, marker) {
			continue
		}
		v, err := ev.field(f.Name)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Member: f.Name, Line: f.Line, Err: err})
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		res.Channels = append(res.Channels, v)
	}
	return res
}

func isString(typ string) bool {
	return typ == "String" || typ == "java.lang.String"
}
