package dataprocessing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdesk/pkg/contracts/domain"
)

func TestParseFedFutures(t *testing.T) {
	input := `date,name,ticker,category,value,sequence
1/15/2025,Fed Funds 2,FF2 Comdty,future,95.70,
1/15/2025,Fed Funds 1,FF1 Comdty,future,95.67,
1/15/2025,Fed Funds Feb25,FFG5 Comdty,future,95.69,2
1/15/2025,Fed Funds 13,FF13 Comdty,future,95.00,
1/15/2025,SOFR,SER1 Comdty,future,95.60,
1/15/2025,Effective rate,FEDL01 Index,rate,4.33,
1/8/2025,Fed Funds 1,FF1 Comdty,future,95.66,
1/8/2025,Fed Funds 1,FF1 Comdty,future,NaN,
`
	snaps, err := ParseFedFutures(strings.NewReader(input), FuturesSpec{})
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	first := snaps[0]
	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), first.Time)
	require.Len(t, first.Contracts, 1)
	assert.Equal(t, 95.66, first.Contracts[0].Price)

	second := snaps[1]
	require.Len(t, second.Contracts, 2, "sequence 13 and non generic tickers are dropped")
	assert.Equal(t, 1, second.Contracts[0].Sequence)
	assert.Equal(t, 2, second.Contracts[1].Sequence)
	assert.Equal(t, "FFG5", second.Contracts[1].Ticker, "later row for the same sequence wins")
	assert.Equal(t, 95.69, second.Contracts[1].Price)
}

func TestContractSequence(t *testing.T) {
	spec := FuturesSpec{GenericRoot: "ff"}
	rows := [][]string{
		{"45672", "", "FF12 Comdty", "future", "96"},
		{"45672", "", "FF0 Comdty", "future", "96"},
		{"45672", "", "FFX Comdty", "future", "96", "x"},
	}
	snaps := ParseFedFuturesRows(rows, spec)
	require.Len(t, snaps, 1)
	require.Len(t, snaps[0].Contracts, 1)
	assert.Equal(t, domain.MaxFuturesSequence, snaps[0].Contracts[0].Sequence)
}

func TestMergeSnapshots(t *testing.T) {
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	older := []domain.FedFutureSnapshot{
		domain.NewFedFutureSnapshot(day, []domain.FuturesContract{{Sequence: 1, Price: 95.0}}),
		domain.NewFedFutureSnapshot(day.AddDate(0, 0, -7), []domain.FuturesContract{{Sequence: 1, Price: 94.9}}),
	}
	newer := []domain.FedFutureSnapshot{
		domain.NewFedFutureSnapshot(day, []domain.FuturesContract{{Sequence: 1, Price: 95.5}}),
	}

	merged := MergeSnapshots(older, newer)
	require.Len(t, merged, 2)
	assert.True(t, merged[0].Time.Before(merged[1].Time))
	assert.Equal(t, 95.5, merged[1].Contracts[0].Price)
}
