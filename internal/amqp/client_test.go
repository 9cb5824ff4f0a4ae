package amqp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"bankpivot/internal/core"
)

type fakeChannel struct {
	exchange, key string
	published     []amqp091.Publishing
	err           error
	deadline      bool
	closed        bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testRun() core.Run {
	return core.Run{
		ID:     "6f1c1d2e-0000-4000-8000-000000000001",
		Source: "tmp.csv",
		Totals: core.Totals{
			Income:  decimal.RequireFromString("50000"),
			Outcome: decimal.RequireFromString("100"),
		},
		Categories: []core.CategorySummary{{Category: "a"}, {Category: "b"}},
	}
}

func TestPublishReportGenerated(t *testing.T) {
	ch := &fakeChannel{}
	c := newClient(ch, "bankpivot", "report_generated", nil)

	msg := NewReportGeneratedMessage(testRun(), []string{"summary.csv"})
	if err := c.PublishReportGenerated(context.Background(), msg); err != nil {
		t.Fatalf("PublishReportGenerated: %v", err)
	}

	if ch.exchange != "bankpivot" || ch.key != "report_generated" {
		t.Fatalf("published to %s/%s", ch.exchange, ch.key)
	}
	if !ch.deadline {
		t.Fatal("expected publish deadline")
	}
	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	p := ch.published[0]
	if p.DeliveryMode != amqp091.Persistent || p.ContentType != "application/json" || p.MessageId != msg.RunID {
		t.Fatalf("unexpected publishing %+v", p)
	}

	decoded, err := ReportGeneratedMessageFromJSON(p.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Balance != "49900.00" || decoded.Categories != 2 || decoded.Artifacts[0] != "summary.csv" {
		t.Fatalf("unexpected message %+v", decoded)
	}
}

func TestPublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	c := newClient(ch, "x", "y", nil)

	err := c.PublishReportGenerated(context.Background(), NewReportGeneratedMessage(testRun(), nil))
	if err == nil || !strings.Contains(err.Error(), "publish message") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMessageJSONFields(t *testing.T) {
	msg := NewReportGeneratedMessage(testRun(), nil)
	msg.Timestamp = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	for _, field := range []string{`"run_id"`, `"source":"tmp.csv"`, `"income":"50000.00"`, `"outcome":"100.00"`, `"artifacts":[]`, `"timestamp":"2026-01-02T03:04:05Z"`} {
		if !strings.Contains(string(body), field) {
			t.Errorf("JSON missing %s: %s", field, body)
		}
	}
}

func TestMessageFromJSONRequiresRunID(t *testing.T) {
	_, err := ReportGeneratedMessageFromJSON([]byte(`{"source":"x"}`))
	if !errors.Is(err, core.ErrEmptyRunID) {
		t.Fatalf("expected ErrEmptyRunID, got %v", err)
	}
	if _, err := ReportGeneratedMessageFromJSON([]byte(`{`)); err == nil {
		t.Fatal("expected JSON error")
	}
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	c := newClient(ch, "x", "y", nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ch.closed {
		t.Fatal("channel not closed")
	}
}
