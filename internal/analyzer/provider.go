package analyzer

import (
	"context"

	"github.com/rohitdas13595/sitesage/internal/model"
)

// SEOProvider defines the contract for any analysis pipeline. A batch
// request always yields one outcome per input URL; only batch-level
// validation (empty or oversized input) is reported as an error.
type SEOProvider interface {
	Analyze(ctx context.Context, targetURL string) model.Outcome
	AnalyzeBatch(ctx context.Context, urls []string) (model.BatchResult, error)
}

// ReportStore is the persistence collaborator. The pipeline hands it
// completed reports and never reads persisted state back.
type ReportStore interface {
	Save(ctx context.Context, report *model.Report) error
}
