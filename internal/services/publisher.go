package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bankpivot/internal/amqp"
	"bankpivot/internal/core"
	"bankpivot/internal/log"
	"bankpivot/internal/report"
)

// Outbound ports of the publish stage.
type (
	Uploader interface {
		Upload(ctx context.Context, localPath string) (uri string, err error)
	}

	RunStore interface {
		SaveRun(ctx context.Context, run core.Run) error
	}

	Notifier interface {
		PublishReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error
	}
)

// Publisher sends finished artifacts to the configured remote destinations.
// Nil destinations are skipped.
type Publisher struct {
	Uploader Uploader
	Sheets   report.Renderer
	History  RunStore
	Notifier Notifier
	Timeout  time.Duration
	Logger   *log.Logger
}

// NewRun describes a finished report for the history and the notification.
func NewRun(rep *report.Report, startedAt time.Time) core.Run {
	return core.Run{
		ID:         uuid.NewString(),
		Source:     rep.Source,
		Policy:     rep.Policy,
		StartedAt:  startedAt,
		Rows:       rep.Table.Transactions,
		Totals:     rep.Totals(),
		Categories: rep.Columns,
	}
}

// Publish uploads files, writes the sheet and saves the run concurrently. The
// first failure cancels the others and is returned. The notification goes
// out last so it can list every artifact.
func (p *Publisher) Publish(ctx context.Context, rep *report.Report, run core.Run, files []string) ([]string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	logger := p.Logger
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger = logger.With(log.NewFields().WithRunID(run.ID).ToSlice()...)

	remote := make([]string, len(files))
	var sheetsRef string

	g, gctx := errgroup.WithContext(ctx)

	if p.Uploader != nil {
		for i, f := range files {
			i, f := i, f
			g.Go(func() error {
				uri, err := p.Uploader.Upload(gctx, f)
				if err != nil {
					return fmt.Errorf("upload %s: %w", f, err)
				}
				remote[i] = uri
				logger.WithComponent(log.ComponentGCS).InfoContext(gctx, "Report uploaded",
					log.NewFields().
						WithOperation(log.OpUpload).
						WithSink("gcs", f).
						With(log.FieldTarget, uri).
						ToSlice()...)
				return nil
			})
		}
	}

	if p.Sheets != nil {
		g.Go(func() error {
			if err := p.Sheets.Render(gctx, rep); err != nil {
				return err
			}
			if ref, ok := p.Sheets.(interface{ Reference() string }); ok {
				sheetsRef = ref.Reference()
			}
			return nil
		})
	}

	if p.History != nil {
		g.Go(func() error {
			if err := p.History.SaveRun(gctx, run); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			logger.WithComponent(log.ComponentStorage).DebugContext(gctx, "Run archived",
				log.NewFields().WithOperation(log.OpSave).ToSlice()...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "Publish failed",
			log.NewFields().WithOperation(log.OpPublish).WithError(err).ToSlice()...)
		return nil, err
	}

	artifacts := make([]string, 0, len(files)*2+1)
	for i, f := range files {
		if remote[i] != "" {
			artifacts = append(artifacts, remote[i])
		} else {
			artifacts = append(artifacts, f)
		}
	}
	if sheetsRef != "" {
		artifacts = append(artifacts, sheetsRef)
	}

	if p.Notifier != nil {
		msg := amqp.NewReportGeneratedMessage(run, artifacts)
		if err := p.Notifier.PublishReportGenerated(ctx, msg); err != nil {
			return artifacts, fmt.Errorf("notify: %w", err)
		}
	}
	return artifacts, nil
}
