// SPDX-License-Identifier: MPL-2.0

package graph

import "github.com/topomap/topomap/internal/classify"

type (
	// Matcher decides whether a classified class belongs to a channel.
	// *infer.Inferencer satisfies it.
	Matcher interface {
		Matches(channel, id string, role classify.Role) bool
	}

	// Accumulator adds services to a Set through a Matcher.
	Accumulator struct {
		set     *Set
		matcher Matcher
	}
)

// NewAccumulator returns an Accumulator writing into set.
func NewAccumulator(set *Set, matcher Matcher) *Accumulator {
	return &Accumulator{set: set, matcher: matcher}
}

// Set returns the underlying relation set.
func (a *Accumulator) Set() *Set { return a.set }

// Attach records service under role on every channel id matches and returns
// those channels in set order. A class may attach to several channels.
func (a *Accumulator) Attach(id string, role classify.Role, service string) []string {
	if role == classify.RoleNone {
		return nil
	}
	var matched []string
	for _, ch := range a.set.Channels() {
		if a.matcher.Matches(ch, id, role) {
			a.set.add(ch, role, service)
			matched = append(matched, ch)
		}
	}
	return matched
}

// AttachChannels records service under role on explicitly named channels.
// Names outside the set are returned as unknown and change nothing.
func (a *Accumulator) AttachChannels(channels []string, role classify.Role, service string) (attached, unknown []string) {
	if role == classify.RoleNone {
		return nil, nil
	}
	for _, ch := range channels {
		if a.set.add(ch, role, service) {
			attached = append(attached, ch)
		} else {
			unknown = append(unknown, ch)
		}
	}
	return attached, unknown
}
