package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"bankpivot/internal/amqp"
	"bankpivot/internal/core"
	"bankpivot/internal/log"
	"bankpivot/internal/pivot"
	"bankpivot/internal/report"
	"bankpivot/internal/sheets"
	"bankpivot/internal/sheets/memory"
	"bankpivot/internal/statement"
)

type fakeUploader struct {
	mu    sync.Mutex
	paths []string
	fail  string
}

func (f *fakeUploader) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == f.fail {
		return "", errors.New("permission denied")
	}
	f.mu.Lock()
	f.paths = append(f.paths, localPath)
	f.mu.Unlock()
	return "gs://bucket/reports/" + localPath, nil
}

type fakeStore struct {
	runs []core.Run
}

func (f *fakeStore) SaveRun(ctx context.Context, run core.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

type blockingStore struct{}

func (blockingStore) SaveRun(ctx context.Context, run core.Run) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeNotifier struct {
	msgs []*amqp.ReportGeneratedMessage
}

func (f *fakeNotifier) PublishReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error {
	f.msgs = append(f.msgs, msg)
	return nil
}

func testReport(t *testing.T) *report.Report {
	t.Helper()
	p := newTestPipeline(t, pivot.PolicyDynamic)
	rep, err := p.Run(context.Background(), strings.NewReader(statementCSV), "tmp.csv", statement.DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return rep
}

func TestNewRun(t *testing.T) {
	rep := testReport(t)
	started := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	run := NewRun(rep, started)

	if _, err := uuid.Parse(run.ID); err != nil {
		t.Fatalf("run id is not a uuid: %q", run.ID)
	}
	if run.Rows != 2 || run.Source != "tmp.csv" || !run.StartedAt.Equal(started) || len(run.Categories) != 2 {
		t.Fatalf("unexpected run %+v", run)
	}
	if err := run.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestPublishFansOut(t *testing.T) {
	rep := testReport(t)
	run := NewRun(rep, time.Now())

	uploader := &fakeUploader{}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	grid := memory.New()
	p := &Publisher{
		Uploader: uploader,
		Sheets:   &sheets.Sink{Writer: grid, Sheet: "Категории"},
		History:  store,
		Notifier: notifier,
		Timeout:  time.Second * 5,
		Logger:   log.Discard(),
	}

	artifacts, err := p.Publish(context.Background(), rep, run, []string{"summary.csv", "financial_report.xlsx"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	want := []string{
		"gs://bucket/reports/summary.csv",
		"gs://bucket/reports/financial_report.xlsx",
		"mem:Категории!A1:4x3",
	}
	if strings.Join(artifacts, ",") != strings.Join(want, ",") {
		t.Fatalf("artifacts = %v, want %v", artifacts, want)
	}
	if len(uploader.paths) != 2 || len(store.runs) != 1 || store.runs[0].ID != run.ID {
		t.Fatalf("uploads=%v runs=%v", uploader.paths, store.runs)
	}
	if _, ok := grid.Grid("Категории"); !ok {
		t.Fatal("sheet not written")
	}
	if len(notifier.msgs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.msgs))
	}
	msg := notifier.msgs[0]
	if msg.RunID != run.ID || msg.Balance != "49900.00" || len(msg.Artifacts) != 3 {
		t.Fatalf("unexpected notification %+v", msg)
	}
}

func TestPublishWithoutDestinations(t *testing.T) {
	rep := testReport(t)
	artifacts, err := (&Publisher{Logger: log.Discard()}).Publish(context.Background(), rep, NewRun(rep, time.Now()), []string{"summary.csv"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(artifacts) != 1 || artifacts[0] != "summary.csv" {
		t.Fatalf("local files should be reported as is, got %v", artifacts)
	}
}

func TestPublishFirstErrorCancelsOthers(t *testing.T) {
	rep := testReport(t)
	notifier := &fakeNotifier{}
	p := &Publisher{
		Uploader: &fakeUploader{fail: "summary.csv"},
		History:  blockingStore{},
		Notifier: notifier,
		Logger:   log.Discard(),
	}

	done := make(chan error, 1)
	go func() {
		_, err := p.Publish(context.Background(), rep, NewRun(rep, time.Now()), []string{"summary.csv"})
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "upload summary.csv: permission denied") {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Publish did not cancel the blocked destination")
	}
	if len(notifier.msgs) != 0 {
		t.Fatal("no notification expected after a failure")
	}
}
