// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/topomap/topomap/internal/javasrc"
)

// Default client types.
const (
	DefaultProducerType = "org.apache.kafka.clients.producer.KafkaProducer"
	DefaultConsumerType = "org.apache.kafka.clients.consumer.KafkaConsumer"
)

var (
	// ErrClassNotFound means the identifier is not declared in the source tree.
	ErrClassNotFound = errors.New("class not found")
	// ErrHierarchyCycle means the superclass chain revisits a class.
	ErrHierarchyCycle = errors.New("superclass chain is cyclic")
)

type (
	// Types is the view of the type catalog the classifier needs.
	// *catalog.Catalog satisfies it.
	Types interface {
		Lookup(name string) (*javasrc.TypeDecl, bool)
		Resolve(ref string, from *javasrc.TypeDecl, known func(string) bool) string
	}

	// Options configures the client types. Empty lists select the defaults.
	Options struct {
		ProducerTypes []string
		ConsumerTypes []string
	}

	// Classification is the role of a class and the field that proved it.
	Classification struct {
		Role Role
		// Class is the class in the hierarchy that declares Field. Empty for RoleNone.
		Class string
		Field string
		// Depth is the number of superclass steps from the classified class to Class.
		Depth int
	}

	// ClassResolutionError reports a class whose hierarchy cannot be walked.
	ClassResolutionError struct {
		Class string
		Err   error
	}

	// Classifier classifies classes against a catalog. Results are memoized,
	// and the classifier is safe for concurrent use.
	Classifier struct {
		types     Types
		producers map[string]struct{}
		consumers map[string]struct{}

		mu   sync.Mutex
		memo map[string]result
	}

	result struct {
		c   Classification
		err error
	}
)

// Error implements the error interface.
func (e *ClassResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve class %s: %v", e.Class, e.Err)
}

// Unwrap returns the cause.
func (e *ClassResolutionError) Unwrap() error { return e.Err }

// New returns a Classifier over types.
func New(types Types, opts Options) *Classifier {
	if len(opts.ProducerTypes) == 0 {
		opts.ProducerTypes = []string{DefaultProducerType}
	}
	if len(opts.ConsumerTypes) == 0 {
		opts.ConsumerTypes = []string{DefaultConsumerType}
	}
	return &Classifier{
		types:     types,
		producers: toSet(opts.ProducerTypes),
		consumers: toSet(opts.ConsumerTypes),
		memo:      make(map[string]result),
	}
}

// Classify walks the superclass chain of id. A superclass outside the catalog
// ends the walk with RoleNone. The identifier itself must be in the catalog.
func (c *Classifier) Classify(id string) (Classification, error) {
	c.mu.Lock()
	r, ok := c.memo[id]
	c.mu.Unlock()
	if ok {
		return r.c, r.err
	}

	cls, err := c.walk(id)

	c.mu.Lock()
	c.memo[id] = result{c: cls, err: err}
	c.mu.Unlock()
	return cls, err
}

func (c *Classifier) walk(id string) (Classification, error) {
	visited := make(map[string]bool)
	cur := id
	for depth := 0; ; depth++ {
		decl, ok := c.types.Lookup(cur)
		if !ok {
			if depth == 0 {
				return Classification{}, &ClassResolutionError{Class: id, Err: ErrClassNotFound}
			}
			return Classification{Role: RoleNone}, nil
		}
		if visited[cur] {
			return Classification{}, &ClassResolutionError{Class: id, Err: fmt.Errorf("%w at %s", ErrHierarchyCycle, cur)}
		}
		visited[cur] = true

		if role, field := c.fieldRole(decl); role != RoleNone {
			return Classification{Role: role, Class: cur, Field: field, Depth: depth}, nil
		}
		if decl.Superclass == "" {
			return Classification{Role: RoleNone}, nil
		}
		cur = c.types.Resolve(decl.Superclass, decl, c.isClient)
	}
}

// fieldRole checks every field for a producer client before looking for a
// consumer client.
func (c *Classifier) fieldRole(decl *javasrc.TypeDecl) (Role, string) {
	resolved := make([]string, len(decl.Fields))
	for i, f := range decl.Fields {
		resolved[i] = c.types.Resolve(f.Type, decl, c.isClient)
	}
	for i, typ := range resolved {
		if _, ok := c.producers[typ]; ok {
			return RoleProducer, decl.Fields[i].Name
		}
	}
	for i, typ := range resolved {
		if _, ok := c.consumers[typ]; ok {
			return RoleConsumer, decl.Fields[i].Name
		}
	}
	return RoleNone, ""
}

func (c *Classifier) isClient(name string) bool {
	_, p := c.producers[name]
	_, k := c.consumers[name]
	return p || k
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
