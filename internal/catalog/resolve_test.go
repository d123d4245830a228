// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"testing"

	"github.com/topomap/topomap/internal/javasrc"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	c := New(
		&javasrc.TypeDecl{Package: "com.acme.kafka", Name: "Local"},
		&javasrc.TypeDecl{Package: "com.acme.util", Name: "Wild"},
		&javasrc.TypeDecl{Package: "com.acme.util", Name: "Outer"},
	)
	from := &javasrc.TypeDecl{
		Package: "com.acme.kafka",
		Name:    "Thing",
		Imports: []javasrc.Import{
			{Path: "org.apache.kafka.clients.producer.KafkaProducer"},
			{Path: "com.acme.util.Outer"},
			{Path: "com.acme.util", OnDemand: true},
			{Path: "org.apache.kafka.clients.consumer", OnDemand: true},
			{Path: "com.acme.Constants.Local", Static: true},
		},
	}
	known := func(name string) bool {
		return name == "org.apache.kafka.clients.consumer.KafkaConsumer"
	}

	tests := []struct {
		ref  string
		want string
	}{
		{"KafkaProducer<String, byte[]>", "org.apache.kafka.clients.producer.KafkaProducer"},
		{"Local", "com.acme.kafka.Local"},
		{"Wild", "com.acme.util.Wild"},
		{"KafkaConsumer", "org.apache.kafka.clients.consumer.KafkaConsumer"},
		{"Unknown", "com.acme.kafka.Unknown"},
		{"java.util.List<String>", "java.util.List"},
		{"Outer.Inner", "com.acme.util.Outer.Inner"},
		{"KafkaProducer[]", "KafkaProducer[]"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			t.Parallel()
			if got := c.Resolve(tt.ref, from, known); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolveDefaultPackage(t *testing.T) {
	t.Parallel()

	c := New()
	from := &javasrc.TypeDecl{Name: "Root"}
	if got := c.Resolve("Helper", from, nil); got != "Helper" {
		t.Errorf("Resolve() = %q, want Helper", got)
	}
}

func TestResolveMemberTypes(t *testing.T) {
	t.Parallel()

	c := New(
		&javasrc.TypeDecl{Package: "com.acme.kafka", Name: "Outer"},
		&javasrc.TypeDecl{Package: "com.acme.kafka", Name: "Outer.Base"},
		&javasrc.TypeDecl{Package: "com.acme.kafka", Name: "Outer.Child"},
		&javasrc.TypeDecl{Package: "com.acme.kafka", Name: "Base"},
	)
	child, _ := c.Lookup("com.acme.kafka.Outer.Child")
	outer, _ := c.Lookup("com.acme.kafka.Outer")

	tests := []struct {
		name string
		ref  string
		from *javasrc.TypeDecl
		want string
	}{
		{"sibling shadows package type", "Base", child, "com.acme.kafka.Outer.Base"},
		{"own member", "Child", outer, "com.acme.kafka.Outer.Child"},
		{"dotted member", "Outer.Base", outer, "com.acme.kafka.Outer.Base"},
		{"member before package type", "Base", outer, "com.acme.kafka.Outer.Base"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Resolve(tt.ref, tt.from, nil); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
