package analytics

import (
	"sort"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
)

const dayLayout = "2006-01-02"

// MovementSeries holds per-day IN and OUT totals aligned on Dates.
type MovementSeries struct {
	Dates    []string `json:"dates"`
	StockIn  []int    `json:"stock_in"`
	StockOut []int    `json:"stock_out"`
}

func movementTime(m entity.StockMovement) time.Time { return m.Timestamp }

// FilterMovementsByWindow keeps movements whose timestamp falls in w.
func FilterMovementsByWindow(movements []entity.StockMovement, w Window) []entity.StockMovement {
	return WindowFilter(movements, movementTime, w)
}

// DailyMovementSeries groups the movements inside w by UTC calendar day.
// Only days with at least one movement appear.
func DailyMovementSeries(movements []entity.StockMovement, w Window) MovementSeries {
	type totals struct{ in, out int }
	byDay := make(map[string]*totals)
	for _, m := range FilterMovementsByWindow(movements, w) {
		day := m.Timestamp.UTC().Format(dayLayout)
		t, ok := byDay[day]
		if !ok {
			t = &totals{}
			byDay[day] = t
		}
		switch m.Type {
		case entity.MovementTypeIn:
			t.in += m.Quantity
		case entity.MovementTypeOut:
			t.out += m.Quantity
		}
	}

	series := MovementSeries{
		Dates:    make([]string, 0, len(byDay)),
		StockIn:  make([]int, 0, len(byDay)),
		StockOut: make([]int, 0, len(byDay)),
	}
	for day := range byDay {
		series.Dates = append(series.Dates, day)
	}
	sort.Strings(series.Dates)
	for _, day := range series.Dates {
		series.StockIn = append(series.StockIn, byDay[day].in)
		series.StockOut = append(series.StockOut, byDay[day].out)
	}
	return series
}

// RecentMovements returns up to limit movements, newest first.
func RecentMovements(movements []entity.StockMovement, limit int) []entity.StockMovement {
	out := make([]entity.StockMovement, len(movements))
	copy(out, movements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MovementDelta is the signed effect of a movement on stock.
func MovementDelta(m entity.StockMovement) int {
	if m.Type == entity.MovementTypeOut {
		return -m.Quantity
	}
	return m.Quantity
}
