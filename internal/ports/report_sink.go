package ports

import (
	"context"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

// ReportSink consumes the aggregated result set of one grading run.
// Rendering and any display action are the sink's concern; the runner makes
// no assumption about the technology behind it.
type ReportSink interface {
	Publish(ctx context.Context, results []grading.TestResult) error
	Close() error
}
