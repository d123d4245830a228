// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/topomap/topomap/internal/classify"
	"github.com/topomap/topomap/internal/infer"
)

// prefixMatcher matches a class to every channel that starts with its simple name, lower-cased.
type prefixMatcher struct{}

func (prefixMatcher) Matches(channel, id string, _ classify.Role) bool {
	return strings.HasPrefix(channel, strings.ToLower(id))
}

func TestNewSetDeduplicates(t *testing.T) {
	t.Parallel()

	s := NewSet([]string{"b", "a", "b", "c"})
	if got := s.Channels(); !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Errorf("Channels() = %v", got)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d", s.Len())
	}
}

func TestAttach(t *testing.T) {
	t.Parallel()

	s := NewSet([]string{"orders-created", "orders-deleted", "payments"})
	acc := NewAccumulator(s, prefixMatcher{})

	got := acc.Attach("Orders", classify.RoleProducer, "order service")
	if want := []string{"orders-created", "orders-deleted"}; !slices.Equal(got, want) {
		t.Errorf("Attach() = %v, want %v", got, want)
	}
	acc.Attach("Orders", classify.RoleConsumer, "billing")
	acc.Attach("Orders", classify.RoleConsumer, "audit")
	acc.Attach("Orders", classify.RoleConsumer, "audit")
	if got := acc.Attach("Payments", classify.RoleNone, "billing"); got != nil {
		t.Errorf("RoleNone attached to %v", got)
	}

	snap := s.Snapshot()
	if want := []string{"order service"}; !slices.Equal(snap[0].Producers, want) {
		t.Errorf("producers = %v", snap[0].Producers)
	}
	if want := []string{"audit", "billing"}; !slices.Equal(snap[1].Consumers, want) {
		t.Errorf("consumers = %v, want sorted and deduplicated", snap[1].Consumers)
	}
	if len(snap[2].Producers)+len(snap[2].Consumers) != 0 {
		t.Errorf("payments = %+v, want empty", snap[2])
	}
}

func TestAttachWithInferencer(t *testing.T) {
	t.Parallel()

	s := NewSet([]string{"device-registration-events", "inbound-events"})
	acc := NewAccumulator(s, infer.New(""))
	acc.Attach("com.sitewhere.registration.kafka.KafkaDeviceRegistrationConsumer", classify.RoleConsumer, "device registration")
	if !s.Has("device-registration-events", classify.RoleConsumer, "device registration") {
		t.Error("consumer not attached")
	}
	if s.Has("inbound-events", classify.RoleConsumer, "device registration") {
		t.Error("consumer attached to unrelated channel")
	}
}

func TestAttachChannels(t *testing.T) {
	t.Parallel()

	s := NewSet([]string{"a", "b"})
	acc := NewAccumulator(s, prefixMatcher{})
	attached, unknown := acc.AttachChannels([]string{"b", "zzz"}, classify.RoleConsumer, "svc")
	if !slices.Equal(attached, []string{"b"}) || !slices.Equal(unknown, []string{"zzz"}) {
		t.Errorf("AttachChannels() = %v, %v", attached, unknown)
	}
	if s.Len() != 2 {
		t.Error("unknown channel must not create a relation")
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	s := NewSet([]string{"events"})
	acc := NewAccumulator(s, prefixMatcher{})
	acc.Attach("Events", classify.RoleProducer, "wrong")

	unknown := s.ApplyOverrides([]Override{
		{Channel: "events", Service: "wrong", Role: classify.RoleProducer, Action: ActionRemove},
		{Channel: "events", Service: "right", Role: classify.RoleProducer},
		{Channel: "events", Service: "reader", Role: classify.RoleConsumer, Action: ActionAdd},
		{Channel: "missing", Service: "x", Role: classify.RoleConsumer, Action: ActionAdd},
	})

	if len(unknown) != 1 || unknown[0].Channel != "missing" {
		t.Errorf("unknown = %v", unknown)
	}
	snap := s.Snapshot()[0]
	if !slices.Equal(snap.Producers, []string{"right"}) || !slices.Equal(snap.Consumers, []string{"reader"}) {
		t.Errorf("relation = %+v", snap)
	}
}

func TestOverrideValidate(t *testing.T) {
	t.Parallel()

	valid := Override{Channel: "c", Service: "s", Role: classify.RoleConsumer, Action: ActionRemove}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	for _, o := range []Override{
		{Service: "s", Role: classify.RoleConsumer},
		{Channel: "c", Role: classify.RoleConsumer},
		{Channel: "c", Service: "s"},
		{Channel: "c", Service: "s", Role: classify.RoleProducer, Action: "toggle"},
	} {
		if err := o.Validate(); !errors.Is(err, ErrInvalidOverride) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidOverride", o, err)
		}
	}
}

func TestEqualIgnoresOrder(t *testing.T) {
	t.Parallel()

	build := func(channels []string, services []string) *Set {
		s := NewSet(channels)
		acc := NewAccumulator(s, prefixMatcher{})
		for _, svc := range services {
			acc.Attach("A", classify.RoleProducer, svc)
			acc.Attach("B", classify.RoleConsumer, svc)
		}
		return s
	}

	a := build([]string{"a1", "b1"}, []string{"x", "y"})
	b := build([]string{"b1", "a1"}, []string{"y", "x"})
	if !Equal(a, b) {
		t.Error("sets with the same content in different order must be equal")
	}
	c := build([]string{"a1", "b1"}, []string{"x"})
	if Equal(a, c) {
		t.Error("sets with different members must differ")
	}
	if Equal(a, NewSet([]string{"a1"})) {
		t.Error("sets with different channels must differ")
	}
}
