package expiry

import (
	"sort"
	"time"

	"lifecycle/entities"
)

type Buckets struct {
	Today   []*entities.Product
	Soon    []*entities.Product
	Expired []*entities.Product
}

// Bucket splits products by the day count of their earliest batch:
// 0 goes to Today, 1..7 to Soon and negative counts to Expired. Products
// without batches are left out. Soon and Expired are ordered by day count.
func Bucket(products []*entities.Product, today time.Time) Buckets {
	var out Buckets
	days := make(map[*entities.Product]int, len(products))
	for _, p := range products {
		ev := Evaluate(p.Batches, today)
		if !ev.OK {
			continue
		}
		days[p] = ev.Days
		switch {
		case ev.Days < 0:
			out.Expired = append(out.Expired, p)
		case ev.Days == 0:
			out.Today = append(out.Today, p)
		case ev.Days <= WarningDays:
			out.Soon = append(out.Soon, p)
		}
	}
	byDays := func(list []*entities.Product) {
		sort.SliceStable(list, func(i, j int) bool { return days[list[i]] < days[list[j]] })
	}
	byDays(out.Soon)
	byDays(out.Expired)
	return out
}

type Stats struct {
	TotalProducts int `json:"total_products"`
	ExpiringSoon  int `json:"expiring_soon"`
	Expired       int `json:"expired"`
	TotalUnits    int `json:"total_units"`
}

// Summarize counts products that have at least one batch, and batches (not
// products) that are expired or expire within the warning window.
func Summarize(products []*entities.Product, today time.Time) Stats {
	var s Stats
	for _, p := range products {
		if len(p.Batches) > 0 {
			s.TotalProducts++
		}
		for _, b := range p.Batches {
			d, err := DaysUntil(b.ExpiryDate, today)
			if err != nil {
				continue
			}
			if d < 0 {
				s.Expired++
			} else if d <= WarningDays {
				s.ExpiringSoon++
			}
		}
		s.TotalUnits += TotalQuantity(p.Batches)
	}
	return s
}

func CountExpiringToday(products []*entities.Product, today time.Time) int {
	n := 0
	for _, p := range products {
		if ev := Evaluate(p.Batches, today); ev.OK && ev.Days == 0 {
			n++
		}
	}
	return n
}

// CountExpiringWithin counts products whose earliest batch expires between
// today and today+days inclusive.
func CountExpiringWithin(products []*entities.Product, today time.Time, days int) int {
	n := 0
	for _, p := range products {
		if ev := Evaluate(p.Batches, today); ev.OK && ev.Days >= 0 && ev.Days <= days {
			n++
		}
	}
	return n
}

// ExpiringSoon lists products expiring within the warning window, soonest
// first, truncated to limit when limit > 0.
func ExpiringSoon(products []*entities.Product, today time.Time, limit int) []*entities.Product {
	type entry struct {
		p    *entities.Product
		days int
	}
	var list []entry
	for _, p := range products {
		if ev := Evaluate(p.Batches, today); ev.OK && ev.Days >= 0 && ev.Days <= WarningDays {
			list = append(list, entry{p, ev.Days})
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].days < list[j].days })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]*entities.Product, 0, len(list))
	for _, e := range list {
		out = append(out, e.p)
	}
	return out
}
