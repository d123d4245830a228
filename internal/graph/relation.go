// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"slices"
	"sync"

	"github.com/topomap/topomap/internal/classify"
)

type (
	// ChannelRelation records the producing and consuming services of a channel.
	ChannelRelation struct {
		Channel   string
		producers map[string]struct{}
		consumers map[string]struct{}
	}

	// Set is an ordered collection with exactly one relation per channel.
	// Relations are created with the set and never removed. Set is safe for
	// concurrent use.
	Set struct {
		mu    sync.RWMutex
		order []*ChannelRelation
		index map[string]*ChannelRelation
	}
)

// NewSet creates one empty relation per distinct channel, keeping the first
// occurrence order.
func NewSet(channels []string) *Set {
	s := &Set{index: make(map[string]*ChannelRelation, len(channels))}
	for _, ch := range channels {
		if _, dup := s.index[ch]; dup {
			continue
		}
		r := &ChannelRelation{
			Channel:   ch,
			producers: make(map[string]struct{}),
			consumers: make(map[string]struct{}),
		}
		s.order = append(s.order, r)
		s.index[ch] = r
	}
	return s
}

// Producers returns the producing services in lexicographic order.
func (r *ChannelRelation) Producers() []string { return sortedKeys(r.producers) }

// Consumers returns the consuming services in lexicographic order.
func (r *ChannelRelation) Consumers() []string { return sortedKeys(r.consumers) }

func (r *ChannelRelation) members(role classify.Role) map[string]struct{} {
	switch role {
	case classify.RoleProducer:
		return r.producers
	case classify.RoleConsumer:
		return r.consumers
	default:
		return nil
	}
}

func (r *ChannelRelation) has(role classify.Role, service string) bool {
	_, ok := r.members(role)[service]
	return ok
}

// Len returns the number of relations.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Channels returns the channels in set order.
func (s *Set) Channels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	for i, r := range s.order {
		out[i] = r.Channel
	}
	return out
}

// Snapshot is a point-in-time copy of one relation.
type Snapshot struct {
	Channel   string   `json:"channel" yaml:"channel"`
	Producers []string `json:"producers" yaml:"producers"`
	Consumers []string `json:"consumers" yaml:"consumers"`
}

// Snapshot copies every relation in set order with sorted members.
func (s *Set) Snapshot() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, len(s.order))
	for i, r := range s.order {
		out[i] = Snapshot{Channel: r.Channel, Producers: r.Producers(), Consumers: r.Consumers()}
	}
	return out
}

// Has reports whether service holds role on channel.
func (s *Set) Has(channel string, role classify.Role, service string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.index[channel]
	return ok && r.has(role, service)
}

// add records service under role on channel. It reports whether the channel
// exists.
func (s *Set) add(channel string, role classify.Role, service string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.index[channel]
	if !ok {
		return false
	}
	if m := r.members(role); m != nil {
		m[service] = struct{}{}
	}
	return true
}

func (s *Set) remove(channel string, role classify.Role, service string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.index[channel]
	if !ok {
		return false
	}
	delete(r.members(role), service)
	return true
}

// Equal compares two sets as sets: the same channels with the same members,
// regardless of relation order.
func Equal(a, b *Set) bool {
	as, bs := a.Snapshot(), b.Snapshot()
	if len(as) != len(bs) {
		return false
	}
	byChannel := make(map[string]Snapshot, len(bs))
	for _, r := range bs {
		byChannel[r.Channel] = r
	}
	for _, r := range as {
		o, ok := byChannel[r.Channel]
		if !ok || !slices.Equal(r.Producers, o.Producers) || !slices.Equal(r.Consumers, o.Consumers) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
