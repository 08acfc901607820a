package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdesk/internal/config"
	"marketdesk/internal/shared/testutil"
	"marketdesk/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func fixtureDir(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "yields_2024.csv", `Date,1 MO,2 YR,10 YR
12/31/2024,4.37,4.24,4.58
12/30/2024,4.40,4.25,4.55
`)
	writeFile(t, dir, "yields_2025.csv", `Date,1 MO,2 YR,10 YR
12/31/2024,4.38,4.24,4.57
1/2/2025,4.45,4.25,4.57
`)
	writeFile(t, dir, "market.csv", `date,name,ticker,category,value,extra
45658,US IG,LUACOAS Index,spread,82,
45658,S&P 500,SPX Index,stox,5881.63,
45658,Banks,SX7P Index,einx,180.2,
45658,Tech,S5INFT Index,einx,4400.1,
45658,EFFR,FEDL01 Index,rate,4.33,
`)
	writeFile(t, dir, "futures.csv", `date,name,ticker,category,value,sequence
45658,FF1,FF1 Comdty,future,95.67,
45658,FF2,FF2 Comdty,future,95.70,
`)
	return dir
}

func TestLoad(t *testing.T) {
	dir := fixtureDir(t)
	logger, handler := testutil.NewTestLogger(t)

	cfg := config.DataConfig{
		Dir:        dir,
		Treasury:   []string{"yields_2024.csv", "yields_2025.csv"},
		Rates:      []string{"market.csv"},
		Credit:     []string{"market.csv", "credit_2026.csv"},
		Watchlist:  []string{"market.csv"},
		Industries: []string{"market.csv"},
		FedFutures: []string{"futures.csv"},
	}

	reg, err := Load(context.Background(), cfg, logger)
	require.NoError(t, err)

	us1m, ok := reg.Series(domain.DatasetTreasury, US1M)
	require.True(t, ok)
	require.Equal(t, 3, us1m.Len())
	assert.Equal(t, 4.38, us1m.At(1).Value, "later file wins on 12/31")

	ig := reg.Get(domain.DatasetCredit, "IG")
	require.Equal(t, 1, ig.Len())
	assert.Equal(t, 82.0, ig.At(0).Value)

	assert.Len(t, reg.Watchlist(), 1)
	assert.Len(t, reg.Industries(), 2)
	assert.Len(t, reg.Rates(), 1)

	snaps := reg.FedFutures()
	require.Len(t, snaps, 1)
	assert.Len(t, snaps[0].Contracts, 2)

	assert.Equal(t, []domain.InstrumentKey{US1M, US2Y, US10Y}, reg.Keys(domain.DatasetTreasury))

	latest, ok := reg.Latest(domain.DatasetTreasury)
	require.True(t, ok)
	assert.Equal(t, date(2025, 1, 2), latest)

	var credit DatasetStats
	for _, st := range reg.Stats() {
		if st.Dataset == domain.DatasetCredit {
			credit = st
		}
	}
	assert.Equal(t, 1, credit.Files, "missing file is not counted")
	assert.Equal(t, 1, credit.Points)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Dataset file not found")
}

func TestLoad_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "yields.json", "{}")

	_, err := Load(context.Background(), config.DataConfig{
		Dir:      dir,
		Treasury: []string{"yields.json"},
	}, slog.New(testutil.NewBufferedSlogHandler(t)))
	assert.Error(t, err)
}

func TestLoad_CancelledContext(t *testing.T) {
	dir := fixtureDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, config.DataConfig{Dir: dir, Treasury: []string{"yields_2024.csv"}}, slog.New(testutil.NewBufferedSlogHandler(t)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	s := domain.NewSeries([]domain.PricePoint{{Time: date(2025, 1, 2), Value: 1}})
	snap := domain.NewFedFutureSnapshot(date(2025, 1, 2), []domain.FuturesContract{{Sequence: 1, Price: 95}})
	reg := FromSeries(map[domain.DatasetID]map[domain.InstrumentKey]domain.Series{
		domain.DatasetTreasury: {US1M: s},
	}, []domain.FedFutureSnapshot{snap})

	m := reg.Treasury()
	delete(m, US1M)
	_, ok := reg.Series(domain.DatasetTreasury, US1M)
	assert.True(t, ok)

	snaps := reg.FedFutures()
	snaps[0] = domain.FedFutureSnapshot{}
	assert.Equal(t, date(2025, 1, 2), reg.FedFutures()[0].Time)

	_, ok = reg.Series(domain.DatasetCredit, "IG")
	assert.False(t, ok)
	assert.True(t, reg.Get(domain.DatasetCredit, "IG").IsEmpty())
}

func TestRegionOf(t *testing.T) {
	region, ok := RegionOf("S5INFT")
	require.True(t, ok)
	assert.Equal(t, RegionUS, region)

	region, ok = RegionOf("SX7P")
	require.True(t, ok)
	assert.Equal(t, RegionEU, region)

	_, ok = RegionOf("SPX")
	assert.False(t, ok)
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	assert.Len(t, catalog, 6)

	for id, ds := range catalog {
		if ds.Shape != ShapeLong {
			continue
		}
		for _, key := range ds.Keys() {
			assert.True(t, ds.Long.Keys.Contains(key), "%s: %s", id, key)
		}
	}

	for _, in := range catalog[domain.DatasetIndustries].Instruments {
		region, ok := RegionOf(in.Key)
		require.True(t, ok, in.Key)
		assert.Equal(t, in.Group, region, in.Key)
	}
}
