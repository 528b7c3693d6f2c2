package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownGroup labels records whose grouping field is empty.
const UnknownGroup = "Unknown"

// DefaultBreakdownWindow is the lookback applied when no start date is given.
const DefaultBreakdownWindow = 30 * 24 * time.Hour

// GroupKey is the closed set of supported grouping dimensions.
type GroupKey string

const (
	GroupByService GroupKey = "service_name"
	GroupByClient  GroupKey = "client"
)

// ParseGroupKey resolves the group_by query value. The empty string and the
// legacy "service" spelling both mean grouping by service name.
func ParseGroupKey(s string) (GroupKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "service", "service_name":
		return GroupByService, nil
	case "client":
		return GroupByClient, nil
	default:
		return "", fmt.Errorf("unsupported group_by %q (use service_name or client)", s)
	}
}

func (k GroupKey) valueOf(e Expense) string {
	var v string
	switch k {
	case GroupByClient:
		v = e.Client
	default:
		v = e.ServiceName
	}
	if strings.TrimSpace(v) == "" {
		return UnknownGroup
	}
	return v
}

type (
	BreakdownGroup struct {
		Category     string  `json:"category"`
		TotalCost    float64 `json:"total_cost"`
		ExpenseCount int     `json:"expense_count"`
		Percentage   float64 `json:"percentage"`
	}

	BreakdownSummary struct {
		TotalCost     float64   `json:"total_cost"`
		TotalExpenses int       `json:"total_expenses"`
		StartDate     time.Time `json:"start_date"`
		EndDate       time.Time `json:"end_date"`
		GroupBy       GroupKey  `json:"group_by"`
	}

	Breakdown struct {
		Summary   BreakdownSummary `json:"summary"`
		Breakdown []BreakdownGroup `json:"breakdown"`
	}

	MonthlyTrend struct {
		Month        string  `json:"month"`
		TotalCost    float64 `json:"total_cost"`
		ExpenseCount int     `json:"expense_count"`
	}

	Trends struct {
		Trends []MonthlyTrend `json:"trends"`
		Period string         `json:"period"`
	}

	ServiceRanking struct {
		ServiceName  string  `json:"service_name"`
		TotalCost    float64 `json:"total_cost"`
		ExpenseCount int     `json:"expense_count"`
	}
)

// BreakdownWindow applies the default range: end falls back to now, start to
// end minus 30 days.
func BreakdownWindow(start, end, now time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		end = now
	}
	if start.IsZero() {
		start = end.Add(-DefaultBreakdownWindow)
	}
	return start, end
}

// CostBreakdown filters records to [start, end] (inclusive), optionally to a
// single client (case-insensitive), then groups by key and computes per-group
// totals, counts, and percentages of the filtered total. Groups keep
// first-encounter order. Percentages are 0 when the filtered set is empty.
func CostBreakdown(records []Expense, start, end time.Time, key GroupKey, clientFilter string) Breakdown {
	filtered := filterByDateRange(records, start, end)
	if clientFilter != "" {
		kept := filtered[:0]
		for _, e := range filtered {
			if strings.EqualFold(e.Client, clientFilter) {
				kept = append(kept, e)
			}
		}
		filtered = kept
	}

	type bucket struct {
		total decimal.Decimal
		count int
	}
	var order []string
	buckets := make(map[string]*bucket)
	total := decimal.Zero
	for _, e := range filtered {
		v := key.valueOf(e)
		b, ok := buckets[v]
		if !ok {
			b = &bucket{}
			buckets[v] = b
			order = append(order, v)
		}
		b.total = b.total.Add(e.Cost)
		b.count++
		total = total.Add(e.Cost)
	}

	groups := make([]BreakdownGroup, 0, len(order))
	for _, v := range order {
		b := buckets[v]
		pct := 0.0
		if total.Sign() > 0 {
			pct = DisplayAmount(b.total.Div(total).Mul(decimal.NewFromInt(100)))
		}
		groups = append(groups, BreakdownGroup{
			Category:     v,
			TotalCost:    DisplayAmount(b.total),
			ExpenseCount: b.count,
			Percentage:   pct,
		})
	}

	return Breakdown{
		Summary: BreakdownSummary{
			TotalCost:     DisplayAmount(total),
			TotalExpenses: len(filtered),
			StartDate:     start,
			EndDate:       end,
			GroupBy:       key,
		},
		Breakdown: groups,
	}
}

// MonthlyTrends buckets the last N months of records by calendar year-month.
// The window is now minus months*30 days; the 30-day-per-month approximation
// is kept for compatibility with the historical contract even though it is
// not calendar-accurate.
func MonthlyTrends(records []Expense, months int, now time.Time) Trends {
	start := now.Add(-time.Duration(months) * 30 * 24 * time.Hour)
	filtered := filterByDateRange(records, start, now)

	type bucket struct {
		total decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)
	for _, e := range filtered {
		k := e.Date.Format("2006-01")
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.total = b.total.Add(e.Cost)
		b.count++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	trends := make([]MonthlyTrend, 0, len(keys))
	for _, k := range keys {
		t, _ := time.Parse("2006-01", k)
		b := buckets[k]
		trends = append(trends, MonthlyTrend{
			Month:        fmt.Sprintf("%s %d", t.Month(), t.Year()),
			TotalCost:    DisplayAmount(b.total),
			ExpenseCount: b.count,
		})
	}

	return Trends{
		Trends: trends,
		Period: fmt.Sprintf("Last %d months", months),
	}
}

// TopServices ranks all records (no date filter) by total cost per service,
// descending. Equal totals order by service name ascending. The result is
// truncated to limit.
func TopServices(records []Expense, limit int) []ServiceRanking {
	type bucket struct {
		total decimal.Decimal
		count int
	}
	var order []string
	buckets := make(map[string]*bucket)
	for _, e := range records {
		v := GroupByService.valueOf(e)
		b, ok := buckets[v]
		if !ok {
			b = &bucket{}
			buckets[v] = b
			order = append(order, v)
		}
		b.total = b.total.Add(e.Cost)
		b.count++
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := buckets[order[i]], buckets[order[j]]
		if !a.total.Equal(b.total) {
			return a.total.GreaterThan(b.total)
		}
		return order[i] < order[j]
	})

	if limit >= 0 && len(order) > limit {
		order = order[:limit]
	}

	ranked := make([]ServiceRanking, 0, len(order))
	for _, v := range order {
		b := buckets[v]
		ranked = append(ranked, ServiceRanking{
			ServiceName:  v,
			TotalCost:    DisplayAmount(b.total),
			ExpenseCount: b.count,
		})
	}
	return ranked
}

func filterByDateRange(records []Expense, start, end time.Time) []Expense {
	var filtered []Expense
	for _, e := range records {
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
