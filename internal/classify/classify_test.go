// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"errors"
	"sync"
	"testing"

	"github.com/topomap/topomap/internal/catalog"
	"github.com/topomap/topomap/internal/javasrc"
)

var kafkaImports = []javasrc.Import{
	{Path: "org.apache.kafka.clients.producer.KafkaProducer"},
	{Path: "org.apache.kafka.clients.consumer.KafkaConsumer"},
}

func decl(pkg, name, super string, fields ...javasrc.Field) *javasrc.TypeDecl {
	return &javasrc.TypeDecl{
		Package:    pkg,
		Name:       name,
		Kind:       javasrc.KindClass,
		Superclass: super,
		Fields:     fields,
		Imports:    kafkaImports,
	}
}

func field(name, typ string) javasrc.Field {
	return javasrc.Field{Name: name, Type: typ}
}

func testCatalog() *catalog.Catalog {
	return catalog.New(
		decl("com.acme.kafka", "BaseProducer", "", field("producer", "KafkaProducer")),
		decl("com.acme.kafka", "BaseConsumer", "", field("consumer", "org.apache.kafka.clients.consumer.KafkaConsumer")),
		decl("com.acme.kafka", "EventsProducer", "BaseProducer"),
		decl("com.acme.kafka", "DeepEventsConsumer", "MiddleConsumer"),
		decl("com.acme.kafka", "MiddleConsumer", "BaseConsumer", field("count", "int")),
		decl("com.acme.kafka", "BothClients", "",
			field("consumer", "KafkaConsumer"),
			field("producer", "KafkaProducer"),
		),
		decl("com.acme.kafka", "ExternalChild", "org.springframework.Base"),
		decl("com.acme.kafka", "Plain", "", field("name", "String")),
		decl("com.acme.kafka", "ArrayHolder", "", field("producers", "KafkaProducer[]")),
		decl("com.acme.kafka", "CycleA", "CycleB"),
		decl("com.acme.kafka", "CycleB", "CycleA"),
		decl("com.acme.kafka", "SelfCycle", "SelfCycle"),
		decl("com.acme.kafka", "Holder", ""),
		decl("com.acme.kafka", "Holder.NestedBase", "", field("consumer", "KafkaConsumer")),
		decl("com.acme.kafka", "NestedChild", "Holder.NestedBase"),
	)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	c := New(testCatalog(), Options{})
	tests := []struct {
		id    string
		want  Role
		class string
		depth int
	}{
		{"com.acme.kafka.BaseProducer", RoleProducer, "com.acme.kafka.BaseProducer", 0},
		{"com.acme.kafka.BaseConsumer", RoleConsumer, "com.acme.kafka.BaseConsumer", 0},
		{"com.acme.kafka.EventsProducer", RoleProducer, "com.acme.kafka.BaseProducer", 1},
		{"com.acme.kafka.DeepEventsConsumer", RoleConsumer, "com.acme.kafka.BaseConsumer", 2},
		{"com.acme.kafka.BothClients", RoleProducer, "com.acme.kafka.BothClients", 0},
		{"com.acme.kafka.ExternalChild", RoleNone, "", 0},
		{"com.acme.kafka.Plain", RoleNone, "", 0},
		{"com.acme.kafka.ArrayHolder", RoleNone, "", 0},
		{"com.acme.kafka.NestedChild", RoleConsumer, "com.acme.kafka.Holder.NestedBase", 1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			got, err := c.Classify(tt.id)
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if got.Role != tt.want || got.Class != tt.class || got.Depth != tt.depth {
				t.Errorf("Classify() = %+v, want role %v class %q depth %d", got, tt.want, tt.class, tt.depth)
			}
		})
	}
}

func TestClassifyBothFieldsIsProducer(t *testing.T) {
	t.Parallel()

	got, err := New(testCatalog(), Options{}).Classify("com.acme.kafka.BothClients")
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != RoleProducer || got.Field != "producer" {
		t.Errorf("Classify() = %+v, want Producer via field producer", got)
	}
}

func TestClassifyErrors(t *testing.T) {
	t.Parallel()

	c := New(testCatalog(), Options{})
	tests := []struct {
		id   string
		want error
	}{
		{"com.acme.kafka.Missing", ErrClassNotFound},
		{"com.acme.kafka.CycleA", ErrHierarchyCycle},
		{"com.acme.kafka.SelfCycle", ErrHierarchyCycle},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			_, err := c.Classify(tt.id)
			var resErr *ClassResolutionError
			if !errors.As(err, &resErr) || resErr.Class != tt.id {
				t.Fatalf("err = %v, want ClassResolutionError for %s", err, tt.id)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClassifyCustomTypes(t *testing.T) {
	t.Parallel()

	cat := catalog.New(&javasrc.TypeDecl{
		Package: "com.acme.bus",
		Name:    "OrderPublisher",
		Fields:  []javasrc.Field{field("sender", "Sender")},
		Imports: []javasrc.Import{{Path: "reactor.kafka.sender", OnDemand: true}},
	})
	c := New(cat, Options{ProducerTypes: []string{"reactor.kafka.sender.Sender"}})
	got, err := c.Classify("com.acme.bus.OrderPublisher")
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != RoleProducer {
		t.Errorf("Role = %v, want producer through on-demand import", got.Role)
	}
}

func TestClassifyMemoized(t *testing.T) {
	t.Parallel()

	types := &countingTypes{Catalog: testCatalog()}
	c := New(types, Options{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Classify("com.acme.kafka.DeepEventsConsumer"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	before := types.lookups()
	if _, err := c.Classify("com.acme.kafka.DeepEventsConsumer"); err != nil {
		t.Fatal(err)
	}
	if after := types.lookups(); after != before {
		t.Errorf("memoized Classify performed %d more lookups", after-before)
	}
}

type countingTypes struct {
	*catalog.Catalog
	mu sync.Mutex
	n  int
}

func (c *countingTypes) Lookup(name string) (*javasrc.TypeDecl, bool) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return c.Catalog.Lookup(name)
}

func (c *countingTypes) lookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
