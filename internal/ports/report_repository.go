package ports

import (
	"context"

	"github.com/bft-labs/flowsync/internal/domain"
)

// ReportRepository persists session reports.
// Implementations write atomically so a crash never leaves a torn report.
type ReportRepository interface {
	// Load returns the last saved report, or a zero report and nil error if
	// none exists.
	Load(ctx context.Context) (domain.Report, error)

	// Save persists the report, replacing any previous one.
	Save(ctx context.Context, report domain.Report) error
}
