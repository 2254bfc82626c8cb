package stats

import "sort"

// Deterministic ordering for aggregate slices built from maps.

func sortTotals(ts []CurrencyTotal) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Currency < ts[j].Currency })
}

func sortCategories(cs []CategoryStat) {
	sort.Slice(cs, func(i, j int) bool {
		if c := cs[i].Total.Cmp(cs[j].Total); c != 0 {
			return c > 0
		}
		return cs[i].Category < cs[j].Category
	})
}

func sortTrend(ps []TrendPoint) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Year != ps[j].Year {
			return ps[i].Year < ps[j].Year
		}
		return ps[i].Month < ps[j].Month
	})
}

func sortMembers(ms []MemberStat) {
	sort.Slice(ms, func(i, j int) bool {
		if c := ms[i].Total.Cmp(ms[j].Total); c != 0 {
			return c > 0
		}
		return ms[i].UserID < ms[j].UserID
	})
}
