package receiving

import (
	"sync"

	"stockreceipt/internal/core/id"
)

// LineOutcome is the result of applying one line.
type LineOutcome struct {
	Line      ReceivedLine `json:"line"`
	Succeeded bool         `json:"succeeded"`
	Failure   *LineFailure `json:"failure,omitempty"`
}

func succeeded(line ReceivedLine) LineOutcome {
	return LineOutcome{Line: line, Succeeded: true}
}

func failed(line ReceivedLine, kind FailureKind, msg string) LineOutcome {
	return LineOutcome{Line: line, Failure: &LineFailure{Kind: kind, Message: msg}}
}

// FailedItem is one entry of the itemized failure list.
type FailedItem struct {
	// Position is the line's index in the executed batch. Row ids come from
	// the client and are not guaranteed unique, so lines are matched by position.
	Position    int         `json:"position"`
	RowID       id.ID       `json:"rowId"`
	DisplayName string      `json:"displayName"`
	Kind        FailureKind `json:"kind"`
	Error       string      `json:"error"`
}

// BatchReport aggregates the outcomes of one execution.
type BatchReport struct {
	Total       int          `json:"total"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	FailedItems []FailedItem `json:"failedItems"`
}

// Consistent reports whether succeeded + failed == total.
func (r BatchReport) Consistent() bool {
	return r.Succeeded+r.Failed == r.Total && len(r.FailedItems) == r.Failed
}

// FullySucceeded reports whether every attempted line was applied.
func (r BatchReport) FullySucceeded() bool {
	return r.Failed == 0
}

// FailedPositions returns the batch positions of failed lines.
func (r BatchReport) FailedPositions() map[int]FailedItem {
	out := make(map[int]FailedItem, len(r.FailedItems))
	for _, item := range r.FailedItems {
		out[item.Position] = item
	}
	return out
}

// Aggregate folds outcomes into a report. outcomes must be index-aligned with
// the batch lines; failed items keep that order.
func Aggregate(outcomes []LineOutcome) BatchReport {
	report := BatchReport{
		Total:       len(outcomes),
		FailedItems: make([]FailedItem, 0),
	}
	for i, o := range outcomes {
		report.add(i, o)
	}
	return report
}

func (r *BatchReport) add(position int, o LineOutcome) {
	if o.Succeeded {
		r.Succeeded++
		return
	}
	r.Failed++

	item := FailedItem{
		Position:    position,
		RowID:       o.Line.RowID,
		DisplayName: o.Line.DisplayName(),
	}
	if o.Failure != nil {
		item.Kind = o.Failure.Kind
		item.Error = o.Failure.Message
	}
	r.FailedItems = append(r.FailedItems, item)
}

// ProgressFunc receives (completed, total) after every finished line.
type ProgressFunc func(completed, total int)

// tally counts completed lines across executor workers and reports progress.
type tally struct {
	mu         sync.Mutex
	total      int
	completed  int
	onProgress ProgressFunc
}

func newTally(total int, onProgress ProgressFunc) *tally {
	return &tally{total: total, onProgress: onProgress}
}

func (t *tally) record() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completed++

	// Called under the lock so observers see completed counts in order.
	if t.onProgress != nil {
		t.onProgress(t.completed, t.total)
	}
}
