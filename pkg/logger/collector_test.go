package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu      sync.Mutex
	topics  []string
	batches [][]AggregatedLogEntry
}

func (p *recordingPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorAggregatesDuplicates(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		c.AddLog("error", "store unreachable", map[string]interface{}{"collection": "kpis"}, "/internal/x.go:10")
	}
	c.AddLog("error", "other", nil, "/internal/y.go:1")
	c.Close()

	if len(pub.batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(pub.batches))
	}
	if pub.topics[0] != "logs" {
		t.Fatalf("unexpected topic %q", pub.topics[0])
	}
	counts := map[string]int{}
	for _, e := range pub.batches[0] {
		counts[e.Message] = e.Count
	}
	if counts["store unreachable"] != 3 || counts["other"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "logs", Publisher: pub})

	c.AddLog("error", "a", nil, "c")
	c.AddLog("error", "b", nil, "c")
	c.Close()

	if len(pub.batches) != 1 || len(pub.batches[0]) != 2 {
		t.Fatalf("expected one batch of 2, got %+v", pub.batches)
	}
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &recordingPublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	l.Error("fit failed", String("offset", "12"), Error(errors.New("boom")))
	l.Info("not collected")
	l.RemoveCollector()

	if len(pub.batches) != 1 || len(pub.batches[0]) != 1 {
		t.Fatalf("expected a single collected entry, got %+v", pub.batches)
	}
	entry := pub.batches[0][0]
	if entry.Fields["error"] != "boom" || entry.Fields["offset"] != "12" {
		t.Fatalf("unexpected fields %v", entry.Fields)
	}
}
