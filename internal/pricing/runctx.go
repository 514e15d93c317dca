// =============================================================================
// Supplier Price Loader - Run Context
// =============================================================================
//
// QuotedOn and BatchId are fixed once per run and stamped on every quote.
//
// =============================================================================

package pricing

import (
	"time"

	"github.com/martybo/Warehouse-Supplier-Price-Management/pkg/utils"
)

// DefaultBatchFormat is used when no batch id format is configured.
const DefaultBatchFormat = "initial_migration_{timestamp}"

// RunContext carries the values that are constant across one run. It is
// built once at run start and passed by value; there are no setters.
type RunContext struct {
	quotedOn  time.Time
	batchID   string
	startedAt time.Time
}

// NewRunContext stamps a run. QuotedOn is the UTC calendar date of now and
// the batch id is formatted from batchFormat ({timestamp}, {date}, {uuid}).
func NewRunContext(now time.Time, batchFormat string) RunContext {
	if batchFormat == "" {
		batchFormat = DefaultBatchFormat
	}
	now = now.UTC()
	return RunContext{
		quotedOn:  truncateDay(now),
		batchID:   utils.FormatPlaceholders(batchFormat, now, nil),
		startedAt: now,
	}
}

// FixedRunContext builds a run context from explicit values, for reruns
// that must reproduce an earlier batch.
func FixedRunContext(quotedOn time.Time, batchID string) RunContext {
	day := truncateDay(quotedOn.UTC())
	return RunContext{quotedOn: day, batchID: batchID, startedAt: day}
}

// QuotedOn is the run date, midnight UTC.
func (r RunContext) QuotedOn() time.Time { return r.quotedOn }

// BatchID identifies the run in the destination store.
func (r RunContext) BatchID() string { return r.batchID }

// StartedAt is the instant the run was stamped.
func (r RunContext) StartedAt() time.Time { return r.startedAt }

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
