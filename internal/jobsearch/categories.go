package jobsearch

import (
	"sort"

	"github.com/shopspring/decimal"
)

const uncategorized = "Other"

// CategoryStat summarises the postings of one board category.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	// AverageSalaryMin is the summed minimum salary divided by Count. Postings
	// without a minimum add nothing to the sum but still count.
	AverageSalaryMin decimal.Decimal `json:"averageSalaryMin"`
}

// Categorize groups jobs by category, most populated first. Ties keep the
// order in which categories first appear.
func Categorize(jobs []Job) []CategoryStat {
	stats := make([]CategoryStat, 0)
	sums := make([]decimal.Decimal, 0)
	index := make(map[string]int)

	for _, j := range jobs {
		name := j.Category
		if name == "" {
			name = uncategorized
		}
		i, ok := index[name]
		if !ok {
			i = len(stats)
			index[name] = i
			stats = append(stats, CategoryStat{Category: name})
			sums = append(sums, decimal.Zero)
		}
		stats[i].Count++
		if j.SalaryMin.IsPositive() {
			sums[i] = sums[i].Add(j.SalaryMin)
		}
	}

	for i := range stats {
		stats[i].AverageSalaryMin = sums[i].Div(decimal.NewFromInt(int64(stats[i].Count))).Round(2)
	}
	sort.SliceStable(stats, func(a, b int) bool { return stats[a].Count > stats[b].Count })
	return stats
}
