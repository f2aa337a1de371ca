package pipeline

import (
	"context"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
)

// stageStatus drives the per-item state machine: continue to the next stage,
// skip the rest of this item's sub-sequence, or fail the item.
type stageStatus int

const (
	stageContinue stageStatus = iota
	stageSkip
	stageFail
)

// stageOutcome is the result of running one stage against one item.
type stageOutcome struct {
	status stageStatus
	reason string
	err    error
}

func proceed() stageOutcome { return stageOutcome{status: stageContinue} }

func skip(reason string) stageOutcome { return stageOutcome{status: stageSkip, reason: reason} }

func fail(reason string, err error) stageOutcome {
	return stageOutcome{status: stageFail, reason: reason, err: err}
}

// itemState carries one candidate through the stage sequence, accumulating
// the resolved content and the record to persist.
type itemState struct {
	article domain.CandidateArticle
	content string
	record  domain.ContentRecord
	posted  *domain.PostOutcome
}

// stage pairs a name (for logs) with its behavior.
type stage struct {
	name string
	run  func(ctx context.Context, item *itemState) stageOutcome
}

// runStages executes the ordered stage list for one item, stopping at the
// first skip or fail. The returned outcome describes how the item ended.
func runStages(ctx context.Context, stages []stage, item *itemState) (string, stageOutcome) {
	for _, s := range stages {
		outcome := s.run(ctx, item)
		if outcome.status != stageContinue {
			return s.name, outcome
		}
	}
	return "", proceed()
}
