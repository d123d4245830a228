// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/topomap/topomap/internal/catalog"
	"github.com/topomap/topomap/internal/javasrc"
)

const namingSource = `package com.sitewhere.microservice.kafka;

public class KafkaTopicNaming {
    protected static final String SEPARATOR = ".";
    protected static final String GLOBAL_INDICATOR = "global";
    protected static final String TENANT_INDICATOR = "tenant";
    protected static final String TOPIC_EVENT_SOURCE_DECODED_EVENTS = "event-source-decoded-events";
    protected static final String TOPIC_INBOUND_EVENTS = TENANT_INDICATOR + SEPARATOR + "inbound-events";
    protected static final String TOPIC_GLOBAL_STATE = KafkaTopicNaming.GLOBAL_INDICATOR + (SEPARATOR + "state");
    protected static final String TOPIC_ALIAS = TOPIC_EVENT_SOURCE_DECODED_EVENTS;
    protected static final String TOPIC_COMPUTED = String.valueOf(1);
    protected static final String TOPIC_FOREIGN = Other.NAME;
    protected static final int TOPIC_PARTITIONS = 8;
    protected String TOPIC_UNSET;
    protected static final String UNRELATED = "not-a-topic";
}
`

func namingDecl(t *testing.T) *javasrc.TypeDecl {
	t.Helper()
	f, err := javasrc.Parse(context.Background(), "KafkaTopicNaming.java", []byte(namingSource))
	if err != nil {
		t.Fatal(err)
	}
	return f.Types[0]
}

func TestExtractChannels(t *testing.T) {
	t.Parallel()

	res := ExtractChannels(namingDecl(t), "")

	want := []string{"event-source-decoded-events", "tenant.inbound-events", "global.state"}
	if !slices.Equal(res.Channels, want) {
		t.Errorf("Channels = %v, want %v", res.Channels, want)
	}

	wantSkipped := map[string]error{
		"TOPIC_COMPUTED": ErrUnsupportedExpr,
		"TOPIC_FOREIGN":  ErrUnresolvedRef,
		"TOPIC_UNSET":    ErrNoValue,
	}
	if len(res.Skipped) != len(wantSkipped) {
		t.Fatalf("Skipped = %v", res.Skipped)
	}
	for _, s := range res.Skipped {
		if !errors.Is(s, wantSkipped[s.Member]) {
			t.Errorf("skipped %s: %v, want %v", s.Member, s.Err, wantSkipped[s.Member])
		}
	}
}

func TestExtractChannelsCustomMarker(t *testing.T) {
	t.Parallel()

	res := ExtractChannels(namingDecl(t), "INDICATOR")
	if want := []string{"global", "tenant"}; !slices.Equal(res.Channels, want) {
		t.Errorf("Channels = %v, want %v", res.Channels, want)
	}
}

func TestExtractChannelsNoMatches(t *testing.T) {
	t.Parallel()

	res := ExtractChannels(&javasrc.TypeDecl{Name: "Empty"}, "TOPIC")
	if len(res.Channels) != 0 || len(res.Skipped) != 0 {
		t.Errorf("Result = %+v, want empty", res)
	}
}

func TestExtractChannelsCycle(t *testing.T) {
	t.Parallel()

	decl := &javasrc.TypeDecl{
		Name: "Loop",
		Fields: []javasrc.Field{
			{Name: "TOPIC_A", Type: "String", Value: javasrc.Ref{Name: "TOPIC_B"}},
			{Name: "TOPIC_B", Type: "String", Value: javasrc.Concat{Left: javasrc.StringLit{Value: "x"}, Right: javasrc.Ref{Name: "TOPIC_A"}}},
		},
	}
	res := ExtractChannels(decl, "")
	if len(res.Channels) != 0 {
		t.Errorf("Channels = %v, want none", res.Channels)
	}
	for _, s := range res.Skipped {
		if !errors.Is(s, ErrConstantCycle) {
			t.Errorf("skipped %s: %v, want ErrConstantCycle", s.Member, s.Err)
		}
	}
}

func TestDeclarationSource(t *testing.T) {
	t.Parallel()

	cat := catalog.New(namingDecl(t))

	res, err := DeclarationSource{Types: cat}.Channels(context.Background())
	if err != nil {
		t.Fatalf("Channels() error: %v", err)
	}
	if len(res.Channels) != 3 {
		t.Errorf("Channels = %v", res.Channels)
	}

	_, err = DeclarationSource{Types: cat, Class: "com.example.Missing"}.Channels(context.Background())
	var accessErr *RegistryAccessError
	if !errors.As(err, &accessErr) || accessErr.Source != "com.example.Missing" {
		t.Fatalf("err = %v, want RegistryAccessError", err)
	}
	if !errors.Is(err, ErrRegistryAccess) {
		t.Error("errors.Is(err, ErrRegistryAccess) = false")
	}

	if _, err := (DeclarationSource{}).Channels(context.Background()); !errors.Is(err, ErrRegistryAccess) {
		t.Errorf("nil catalog err = %v", err)
	}
}

func TestListSource(t *testing.T) {
	t.Parallel()

	src := ListSource{List: []string{"b", " a ", "", "b", "c"}}
	res, err := src.Channels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"b", "a", "c"}; !slices.Equal(res.Channels, want) {
		t.Errorf("Channels = %v, want %v", res.Channels, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Channels(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled err = %v", err)
	}
}
