package partition

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

var defaultLimits = Limits{MaxRows: 4000, MaxAmount: decimal.NewFromInt(4_500_000_000)}

func tx(bic string, i int, amount decimal.Decimal) types.Transaction {
	return types.Transaction{
		Employee: types.Employee{
			Name:      fmt.Sprintf("emp-%d", i),
			IBAN:      fmt.Sprintf("IQ26RAFB%015d", i),
			NetSalary: amount,
			SourceRow: i + 2,
		},
		ReceiverBIC: bic,
	}
}

func txs(bic string, amounts ...int64) []types.Transaction {
	out := make([]types.Transaction, len(amounts))
	for i, a := range amounts {
		out[i] = tx(bic, i, decimal.NewFromInt(a))
	}
	return out
}

func TestSplit_RowCap(t *testing.T) {
	records := make([]types.Transaction, 4001)
	for i := range records {
		records[i] = tx("RAFBIQB1098", i, decimal.NewFromInt(1000))
	}

	batches := Split("RAFBIQB1098", records, defaultLimits)
	require.Len(t, batches, 2)

	assert.Equal(t, 1, batches[0].Sequence)
	assert.Equal(t, 4000, batches[0].RowCount())
	assert.True(t, batches[0].Total.Equal(decimal.NewFromInt(4_000_000)))

	assert.Equal(t, 2, batches[1].Sequence)
	assert.Equal(t, 1, batches[1].RowCount())
	assert.True(t, batches[1].Total.Equal(decimal.NewFromInt(1000)))
}

func TestSplit_AmountCap(t *testing.T) {
	tests := []struct {
		name    string
		amounts []int64
		want    [][]int64
	}{
		{
			name:    "two over-cap heads then small tail",
			amounts: []int64{4_400_000_000, 4_400_000_000, 100},
			want:    [][]int64{{4_400_000_000}, {4_400_000_000, 100}},
		},
		{
			name:    "tail too large to join",
			amounts: []int64{4_400_000_000, 4_400_000_000, 200_000_000},
			want:    [][]int64{{4_400_000_000}, {4_400_000_000}, {200_000_000}},
		},
		{
			name:    "singleton over cap emitted alone",
			amounts: []int64{5_000_000_000, 10},
			want:    [][]int64{{5_000_000_000}, {10}},
		},
		{
			name:    "exactly at cap stays together",
			amounts: []int64{2_250_000_000, 2_250_000_000},
			want:    [][]int64{{2_250_000_000, 2_250_000_000}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := Split("X", txs("X", tt.amounts...), defaultLimits)
			require.Len(t, batches, len(tt.want))
			for i, b := range batches {
				got := make([]int64, len(b.Records))
				for j, r := range b.Records {
					got[j] = r.NetSalary.IntPart()
				}
				assert.Equal(t, tt.want[i], got)
				assert.Equal(t, i+1, b.Sequence)
			}
		})
	}
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split("X", nil, defaultLimits))
}

func TestPartition_GroupsSortedByReceiver(t *testing.T) {
	in := []types.Transaction{
		tx("RDBAIQB1046", 0, decimal.NewFromInt(1)),
		tx("AIBIIQBA991", 1, decimal.NewFromInt(2)),
		tx("RDBAIQB1046", 2, decimal.NewFromInt(3)),
	}

	batches, err := Partition(in, defaultLimits)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, "AIBIIQBA991", batches[0].ReceiverBIC)
	assert.Equal(t, "RDBAIQB1046", batches[1].ReceiverBIC)
	assert.Equal(t, "991", batches[0].BranchSuffix())
	assert.Equal(t, []string{"emp-0", "emp-2"}, []string{batches[1].Records[0].Name, batches[1].Records[1].Name})
	assert.True(t, batches[1].Total.Equal(decimal.NewFromInt(4)))
}

func TestPartition_InvalidLimits(t *testing.T) {
	_, err := Partition(nil, Limits{MaxRows: 0, MaxAmount: decimal.NewFromInt(1)})
	require.Error(t, err)

	_, err = Partition(nil, Limits{MaxRows: 1})
	require.Error(t, err)
}

// TestPartition_Properties checks the batch invariants on random input.
func TestPartition_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	limits := Limits{MaxRows: 7, MaxAmount: decimal.NewFromInt(1000)}
	bics := []string{"A", "B", "C"}

	var in []types.Transaction
	for i := 0; i < 500; i++ {
		amount := decimal.NewFromInt(rng.Int63n(1500) - 100)
		in = append(in, tx(bics[rng.Intn(len(bics))], i, amount))
	}

	batches, err := Partition(in, limits)
	require.NoError(t, err)

	seen := make(map[string][]string)
	lastSeq := make(map[string]int)
	for _, b := range batches {
		assert.LessOrEqual(t, b.RowCount(), limits.MaxRows)
		assert.Positive(t, b.RowCount())
		if b.RowCount() > 1 {
			assert.True(t, b.Total.LessThanOrEqual(limits.MaxAmount), "batch %s/%d over cap", b.ReceiverBIC, b.Sequence)
		}
		assert.True(t, b.Total.Equal(sum(b.Records)))
		assert.Equal(t, lastSeq[b.ReceiverBIC]+1, b.Sequence)
		lastSeq[b.ReceiverBIC] = b.Sequence
		for _, r := range b.Records {
			seen[b.ReceiverBIC] = append(seen[b.ReceiverBIC], r.Name)
		}
	}

	for bic, group := range GroupByReceiver(in) {
		want := make([]string, len(group))
		for i, r := range group {
			want[i] = r.Name
		}
		assert.Equal(t, want, seen[bic], bic)
	}
}
