package gold

import (
	"testing"

	"shelfwatch/internal/models"

	"github.com/stretchr/testify/require"
)

func TestBuildPriceHistoryRisingScenario(t *testing.T) {
	in := []models.Observation{
		obs("P1", "A", 100, day(1)),
		obs("P1", "A", 110, day(2)),
	}

	facts, err := BuildPriceHistory(in)
	require.NoError(t, err)
	require.Len(t, facts, 2, "fact table has the same cardinality as the input")

	first, second := facts[0], facts[1]

	require.Nil(t, first.PreviousPrice)
	require.Nil(t, first.PreviousDate)
	require.Equal(t, 0.0, first.PriceChangePct, "no prior data is reported as no change")
	require.Equal(t, models.TrendStable, first.PriceTrend)

	require.NotNil(t, second.PreviousPrice)
	require.Equal(t, 100.0, *second.PreviousPrice)
	require.Equal(t, day(1), *second.PreviousDate)
	require.InDelta(t, 0.10, second.PriceChangePct, 1e-12)
	require.Equal(t, models.TrendRising, second.PriceTrend)
}

func TestBuildPriceHistoryChangePctExact(t *testing.T) {
	in := []models.Observation{
		obs("P1", "A", 80, day(1)),
		obs("P1", "A", 60, day(2)),
		obs("P1", "A", 63, day(3)),
	}

	facts, err := BuildPriceHistory(in)
	require.NoError(t, err)

	for _, f := range facts {
		if f.PreviousPrice == nil {
			continue
		}
		require.Equal(t, (f.Price-*f.PreviousPrice)/(*f.PreviousPrice), f.PriceChangePct)
	}

	require.Equal(t, models.TrendFalling, facts[1].PriceTrend) // -25%
	require.Equal(t, models.TrendStable, facts[2].PriceTrend)  // +5% is inside the band
}

func TestBuildPriceHistoryRowCountWindows(t *testing.T) {
	// Ten rows priced 1..10: windows are row-count framed, inclusive of
	// the current row.
	in := make([]models.Observation, 0, 10)
	for i := 1; i <= 10; i++ {
		in = append(in, obs("P1", "A", float64(i), day(i)))
	}

	facts, err := BuildPriceHistory(in)
	require.NoError(t, err)
	require.Len(t, facts, 10)

	// Row 10: last 7 prices are 4..10, average 7.
	require.InDelta(t, 7.0, facts[9].Avg7Day, 1e-9)
	// Fewer rows than the window just shrinks it: row 3 averages 1..3.
	require.InDelta(t, 2.0, facts[2].Avg7Day, 1e-9)
	// All ten rows fit inside the 30-row window.
	require.InDelta(t, 5.5, facts[9].Avg30Day, 1e-9)
	require.Equal(t, 1.0, facts[9].Min30Day)
	require.Equal(t, 10.0, facts[9].Max30Day)
}

func TestBuildPriceHistoryLongWindowSlides(t *testing.T) {
	// 35 rows: the 30-row window at the last row starts at row 6 (price 6).
	in := make([]models.Observation, 0, 35)
	for i := 1; i <= 35; i++ {
		in = append(in, obs("P1", "A", float64(i), day(i)))
	}

	facts, err := BuildPriceHistory(in)
	require.NoError(t, err)

	last := facts[34]
	require.Equal(t, 6.0, last.Min30Day)
	require.Equal(t, 35.0, last.Max30Day)
	require.InDelta(t, 20.5, last.Avg30Day, 1e-9) // mean of 6..35
}

func TestBuildPriceHistoryPartitionIsolation(t *testing.T) {
	in := []models.Observation{
		obs("P1", "A", 100, day(1)),
		obs("P1", "B", 900, day(1)),
		obs("P1", "A", 110, day(2)),
		obs("P2", "A", 5, day(2)),
	}

	facts, err := BuildPriceHistory(in)
	require.NoError(t, err)
	require.Len(t, facts, 4)

	byKey := make(map[string][]models.PriceHistoryFact)
	for _, f := range facts {
		k := f.ProductID + "|" + f.Category
		byKey[k] = append(byKey[k], f)
	}

	// P1/A sees only its own rows: the 900 from P1/B never leaks in.
	p1a := byKey["P1|A"]
	require.Len(t, p1a, 2)
	require.Equal(t, 110.0, p1a[1].Max30Day)
	require.Equal(t, 100.0, *p1a[1].PreviousPrice)

	// Each partition starts fresh with no previous price.
	require.Nil(t, byKey["P1|B"][0].PreviousPrice)
	require.Nil(t, byKey["P2|A"][0].PreviousPrice)
}

func TestBuildPriceHistoryStableTieBreak(t *testing.T) {
	// Same scrape date: ingestion order decides who is "previous".
	in := []models.Observation{
		obs("P1", "A", 10, day(1)),
		obs("P1", "A", 20, day(1)),
		obs("P1", "A", 30, day(1)),
	}

	facts, err := BuildPriceHistory(in)
	require.NoError(t, err)
	require.Equal(t, 10.0, facts[0].Price)
	require.Equal(t, 20.0, facts[1].Price)
	require.Equal(t, 10.0, *facts[1].PreviousPrice)
	require.Equal(t, 20.0, *facts[2].PreviousPrice)
}

func TestBuildPriceHistoryStatusAndExtremes(t *testing.T) {
	in := []models.Observation{
		obs("P1", "A", 100, day(1)),
		obs("P1", "A", 100, day(2)),
		obs("P1", "A", 100, day(3)),
		obs("P1", "A", 70, day(4)),
	}

	facts, err := BuildPriceHistory(in)
	require.NoError(t, err)

	last := facts[3]
	// 70 against a trailing average of 92.5 is well below the -5% band.
	require.Equal(t, models.StatusGoodDeal, last.PriceStatus)
	require.True(t, last.IsAt30DayLow)
	require.False(t, last.IsAt30DayHigh)

	// A flat series is simultaneously at its low and its high.
	require.True(t, facts[0].IsAt30DayLow)
	require.True(t, facts[0].IsAt30DayHigh)
	require.Equal(t, models.StatusNormal, facts[0].PriceStatus)
}

func TestBuildPriceHistoryPremiumStatus(t *testing.T) {
	in := []models.Observation{
		obs("P1", "A", 100, day(1)),
		obs("P1", "A", 100, day(2)),
		obs("P1", "A", 130, day(3)),
	}

	facts, err := BuildPriceHistory(in)
	require.NoError(t, err)

	last := facts[2]
	// 130 against a trailing average of 110 exceeds the +5% band.
	require.Equal(t, models.StatusPremium, last.PriceStatus)
	require.True(t, last.IsAt30DayHigh)
}

func TestBuildPriceHistoryEmptyInput(t *testing.T) {
	facts, err := BuildPriceHistory(nil)
	require.NoError(t, err)
	require.NotNil(t, facts)
	require.Empty(t, facts)
}

func TestBuildPriceHistoryIdempotent(t *testing.T) {
	in := []models.Observation{
		obs("P2", "B", 40, day(2)),
		obs("P1", "A", 100, day(1)),
		obs("P1", "A", 90, day(3)),
		obs("P2", "B", 44, day(4)),
		obs("P1", "B", 100, day(1)),
	}

	first, err := BuildPriceHistory(in)
	require.NoError(t, err)
	second, err := BuildPriceHistory(in)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBuildPriceHistoryRejectsMissingCategory(t *testing.T) {
	bad := obs("P1", "", 10, day(1))
	_, err := BuildPriceHistory([]models.Observation{bad})
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	require.Contains(t, se.Error(), "category")
}
