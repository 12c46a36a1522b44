package dashboard

import (
	"math"
	"testing"
)

func TestComputeReturnsExample(t *testing.T) {
	p := samplePanel()
	c := allCriteria()
	c.Symbols = []string{"AAPL"}

	rets := ComputeReturns(Filter(p, c))
	if len(rets) != 3 {
		t.Fatalf("got %d returns, want 3", len(rets))
	}
	if rets[0].ReturnPct != nil {
		t.Errorf("first return = %v, want nil", *rets[0].ReturnPct)
	}
	if rets[1].ReturnPct == nil || !approx(*rets[1].ReturnPct, 10) {
		t.Errorf("second return = %v, want +10", rets[1].ReturnPct)
	}
	if rets[2].ReturnPct == nil || !approx(*rets[2].ReturnPct, -10) {
		t.Errorf("third return = %v, want -10", rets[2].ReturnPct)
	}
}

func TestComputeReturnsDefinedCount(t *testing.T) {
	v := Filter(samplePanel(), allCriteria())
	defined := 0
	for _, r := range ComputeReturns(v) {
		if r.ReturnPct != nil {
			defined++
		}
	}
	// AAPL 3 rows, MSFT 3 rows, JPM 2 rows -> 2 + 2 + 1.
	if defined != 5 {
		t.Errorf("defined returns = %d, want 5", defined)
	}
}

func TestComputeReturnsZeroPrevClose(t *testing.T) {
	v := View{
		{Symbol: "X", Date: mustDate("2024-01-02"), Close: 0},
		{Symbol: "X", Date: mustDate("2024-01-03"), Close: 5},
		{Symbol: "X", Date: mustDate("2024-01-04"), Close: 10},
	}
	rets := ComputeReturns(v)
	if rets[1].ReturnPct != nil {
		t.Errorf("return after zero close should be nil, got %v", *rets[1].ReturnPct)
	}
	// k=3 with one zero close among the first k-1 rows: one defined return.
	if rets[2].ReturnPct == nil || !approx(*rets[2].ReturnPct, 100) {
		t.Errorf("return after positive close = %v, want 100", rets[2].ReturnPct)
	}
}

func TestScalarStats(t *testing.T) {
	c := allCriteria()
	c.Symbols = []string{"AAPL"}
	s := ScalarStats(Filter(samplePanel(), c))

	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if !approx(s.Mean, 103) || s.Median != 100 || s.Min != 99 || s.Max != 110 {
		t.Errorf("stats = %+v", s)
	}
	// Squared deviations from 103 sum to 74; 74/(3-1) = 37.
	if s.Std == nil || !approx(*s.Std, math.Sqrt(37)) {
		t.Errorf("Std = %v, want sqrt(37)", s.Std)
	}

	one := ScalarStats(View{{Symbol: "A", Close: 5}})
	if one.Std != nil {
		t.Error("Std of one value should be nil")
	}
	if empty := ScalarStats(View{}); empty != (PriceStats{}) {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestGroupStats(t *testing.T) {
	type item struct {
		k string
		v float64
		n bool
	}
	items := []item{{"a", 1, true}, {"a", 3, true}, {"b", 9, false}, {"c", 4, true}}
	got := GroupStats(items,
		func(i item) string { return i.k },
		func(i item) (float64, bool) { return i.v, i.n },
		Mean)

	if a := got["a"]; a.N != 2 || a.Value == nil || *a.Value != 2 {
		t.Errorf("group a = %+v", a)
	}
	if b, ok := got["b"]; !ok || b.N != 0 || b.Value != nil {
		t.Errorf("group b should exist with no value, got %+v (present=%v)", b, ok)
	}
	if c := got["c"]; c.Value == nil || *c.Value != 4 {
		t.Errorf("group c = %+v", c)
	}
}

func TestSectorTables(t *testing.T) {
	v := Filter(samplePanel(), allCriteria())

	dist := SectorDistribution(v)
	if len(dist) != 2 || dist[0] != (SectorCount{"Finance", 2}) || dist[1] != (SectorCount{"Technology", 6}) {
		t.Errorf("SectorDistribution = %+v", dist)
	}

	rets := ComputeReturns(v)

	vol := SectorVolatilities(rets)
	if len(vol) != 2 {
		t.Fatalf("SectorVolatilities = %+v", vol)
	}
	// Finance has one defined return, so its volatility is undefined.
	if vol[0].Sector != "Finance" || vol[0].Volatility != nil || vol[0].Observations != 1 {
		t.Errorf("Finance volatility = %+v", vol[0])
	}
	if vol[1].Sector != "Technology" || vol[1].Volatility == nil || vol[1].Observations != 4 {
		t.Errorf("Technology volatility = %+v", vol[1])
	}

	means := SectorMeanReturns(rets)
	if len(means) != 2 {
		t.Fatalf("SectorMeanReturns = %+v", means)
	}
	if means[0].Sector != "Finance" || !approx(means[0].MeanReturn, 2) {
		t.Errorf("Finance mean return = %+v", means[0])
	}
}

func TestSectorTechnologyExample(t *testing.T) {
	// AAPL [100,110,99] with MSFT [200,210,190] in Technology.
	c := allCriteria()
	c.Sector = "Technology"
	v := Filter(samplePanel(), c)
	rets := ComputeReturns(v)

	// Returns +10, -10, +5, -200/21 percent.
	const (
		wantStd  = 10.174915801353142
		wantMean = -95.0 / 84
	)

	vol := SectorVolatilities(rets)
	if len(vol) != 1 || vol[0].Volatility == nil || !approx(*vol[0].Volatility, wantStd) {
		t.Errorf("volatility = %+v, want %v", vol, wantStd)
	}
	means := SectorMeanReturns(rets)
	if len(means) != 1 || !approx(means[0].MeanReturn, wantMean) {
		t.Errorf("mean returns = %+v, want %v", means, wantMean)
	}
}

func TestSectorMeanReturnsOmitsSectorsWithoutReturns(t *testing.T) {
	c := allCriteria()
	c.Start = mustDate("2024-01-02")
	c.End = mustDate("2024-01-02")
	rets := ComputeReturns(Filter(samplePanel(), c))

	if got := SectorMeanReturns(rets); len(got) != 0 {
		t.Errorf("SectorMeanReturns = %+v, want empty", got)
	}
	for _, sv := range SectorVolatilities(rets) {
		if sv.Volatility != nil {
			t.Errorf("volatility for %s should be nil", sv.Sector)
		}
	}
}

func TestTopN(t *testing.T) {
	v := Filter(samplePanel(), allCriteria())

	top := TopN(v, 10, MetricPrice)
	if len(top) != 3 {
		t.Fatalf("TopN returned %d entries, want 3", len(top))
	}
	if top[0].Symbol != "MSFT" || top[1].Symbol != "JPM" || top[2].Symbol != "AAPL" {
		t.Errorf("order = %s %s %s", top[0].Symbol, top[1].Symbol, top[2].Symbol)
	}
	aapl := top[2]
	if !approx(aapl.Avg, 103) || aapl.Max != 110 || aapl.Min != 99 {
		t.Errorf("AAPL entry = %+v", aapl)
	}
	if !approx(aapl.BandLow, 4) || !approx(aapl.BandHigh, 7) {
		t.Errorf("AAPL bands = %v/%v, want 4/7", aapl.BandLow, aapl.BandHigh)
	}

	if got := TopN(v, 1, MetricPrice); len(got) != 1 || got[0].Symbol != "MSFT" {
		t.Errorf("TopN(1) = %+v", got)
	}
	if got := TopN(v, 0, MetricPrice); got == nil || len(got) != 0 {
		t.Errorf("TopN(0) = %v, want empty", got)
	}

	vol := TopN(v, 10, MetricVolume)
	// MSFT mean 4M, AAPL 2M, JPM 0.6M.
	if vol[0].Symbol != "MSFT" || !approx(vol[0].Avg, 4) {
		t.Errorf("volume top = %+v", vol[0])
	}
	if vol[2].Symbol != "JPM" || !approx(vol[2].Avg, 0.6) {
		t.Errorf("volume bottom = %+v", vol[2])
	}
}

func TestTopNTieBreak(t *testing.T) {
	v := View{
		{Symbol: "BBB", Close: 10},
		{Symbol: "AAA", Close: 10},
		{Symbol: "CCC", Close: 10},
	}
	for i := 0; i < 5; i++ {
		got := TopN(v, 2, MetricPrice)
		if len(got) != 2 || got[0].Symbol != "AAA" || got[1].Symbol != "BBB" {
			t.Fatalf("tie order = %+v, want AAA, BBB", got)
		}
	}
}

func TestLatestPerSymbol(t *testing.T) {
	rows := LatestPerSymbol(Filter(samplePanel(), allCriteria()))
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Latest closes: MSFT 190 (01-04), JPM 153 (01-03), AAPL 99 (01-04).
	want := []struct {
		sym   string
		close float64
		date  string
	}{{"MSFT", 190, "2024-01-04"}, {"JPM", 153, "2024-01-03"}, {"AAPL", 99, "2024-01-04"}}
	for i, w := range want {
		if rows[i].Symbol != w.sym || rows[i].Close != w.close || rows[i].Date.String() != w.date {
			t.Errorf("row %d = %+v, want %v", i, rows[i], w)
		}
	}
}

func TestLatestPerSymbolTieKeepsFirst(t *testing.T) {
	d := mustDate("2024-01-02")
	rows := LatestPerSymbol(View{
		{Symbol: "A", Date: d, Close: 1},
		{Symbol: "A", Date: d, Close: 2},
	})
	if len(rows) != 1 || rows[0].Close != 1 {
		t.Errorf("rows = %+v, want first occurrence", rows)
	}
}

func TestPriceSeriesBySymbol(t *testing.T) {
	series := PriceSeriesBySymbol(Filter(samplePanel(), allCriteria()))
	if len(series) != 3 || series[0].Symbol != "AAPL" || series[2].Symbol != "MSFT" {
		t.Fatalf("series = %+v", series)
	}
	pts := series[2].Points
	if len(pts) != 3 || pts[0].Close != 200 || pts[2].Close != 190 {
		t.Errorf("MSFT points = %+v", pts)
	}
}
