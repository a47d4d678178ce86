// =============================================================================
// Payroll Bank Splitter - File Partitioner
// =============================================================================
//
// This module groups routed transactions by receiver identifier and slices
// every group into batches that respect two caps at the same time:
//
//   - Row cap (R):    a batch never holds more than R records.
//   - Amount cap (A): a batch of two or more records never sums above A.
//
// WINDOW ALGORITHM (per receiver group, input order):
//
//   1. Take the next min(R, remaining) records as the window.
//   2. While the window sum is above A and the window holds more than one
//      record, drop the window's last record.
//   3. Emit the window as the next batch. A single record above A is emitted
//      on its own.
//   4. Continue after the last emitted record.
//
// The batches of one receiver partition its records exactly, in input order,
// with sequence numbers 1, 2, 3, ...
//
// =============================================================================

package partition

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

// Limits holds the caps applied to every batch.
type Limits struct {
	MaxRows   int
	MaxAmount decimal.Decimal
}

// Validate checks that the limits can produce progress.
func (l Limits) Validate() error {
	if l.MaxRows < 1 {
		return fmt.Errorf("max rows per file must be at least 1, got %d", l.MaxRows)
	}
	if !l.MaxAmount.IsPositive() {
		return fmt.Errorf("max amount per file must be positive, got %s", l.MaxAmount)
	}
	return nil
}

// =============================================================================
// PARTITION FUNCTIONS
// =============================================================================

// Partition groups transactions by receiver and splits every group.
//
// PARAMETERS:
//   - transactions: Routed transactions in input order.
//   - limits: The row and amount caps.
//
// RETURNS:
//   - Batches ordered by receiver identifier, then by sequence.
//   - An error if the limits are unusable.
func Partition(transactions []types.Transaction, limits Limits) ([]types.Batch, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	groups := GroupByReceiver(transactions)

	receivers := make([]string, 0, len(groups))
	for bic := range groups {
		receivers = append(receivers, bic)
	}
	sort.Strings(receivers)

	var batches []types.Batch
	for _, bic := range receivers {
		batches = append(batches, Split(bic, groups[bic], limits)...)
	}

	return batches, nil
}

// GroupByReceiver buckets transactions by receiver identifier.
// Input order is kept inside every bucket.
func GroupByReceiver(transactions []types.Transaction) map[string][]types.Transaction {
	groups := make(map[string][]types.Transaction)
	for _, tx := range transactions {
		groups[tx.ReceiverBIC] = append(groups[tx.ReceiverBIC], tx)
	}
	return groups
}

// Split slices one receiver group into capped batches.
// An empty group yields no batches. limits must already be valid.
func Split(bic string, records []types.Transaction, limits Limits) []types.Batch {
	var batches []types.Batch

	start := 0
	for start < len(records) {
		end := min(start+limits.MaxRows, len(records))
		total := sum(records[start:end])

		for total.GreaterThan(limits.MaxAmount) && end-start > 1 {
			end--
			total = total.Sub(records[end].NetSalary)
		}

		batches = append(batches, types.Batch{
			ReceiverBIC: bic,
			Sequence:    len(batches) + 1,
			Records:     records[start:end:end],
			Total:       total,
		})

		start = end
	}

	return batches
}

// sum adds the salaries of the given records.
func sum(records []types.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.NetSalary)
	}
	return total
}
