package aggregate

import (
	"sort"

	"spendscope/pkg/contracts/domain"
)

type cubeKey struct {
	month string
	l1    string
	org   string
}

type cubeAcc struct {
	key           cubeKey
	spend         float64
	count         int
	maverickSpend float64
	suppliers     map[string]float64
}

// buildCube rolls the facts up into the month × category L1 × org unit
// cube. Undated transactions carry no month and stay out of the cube;
// with no business-unit column mapped every cell lands on the empty org
// key. Cells come back sorted by month, category, org so the
// month-over-month delta for a (category, org) pair can be read off a
// single forward pass.
func buildCube(transactions []domain.Transaction) []domain.KPICell {
	cells := make(map[cubeKey]*cubeAcc)
	for _, tx := range transactions {
		if !tx.HasDate {
			continue
		}
		key := cubeKey{month: tx.YearMonth, l1: tx.CategoryL1, org: tx.OrgUnit}
		acc, ok := cells[key]
		if !ok {
			acc = &cubeAcc{key: key, suppliers: make(map[string]float64)}
			cells[key] = acc
		}
		acc.spend += tx.Amount
		acc.count++
		acc.suppliers[tx.Supplier] += tx.Amount
		if tx.Maverick {
			acc.maverickSpend += tx.Amount
		}
	}

	seq := make([]*cubeAcc, 0, len(cells))
	for _, acc := range cells {
		seq = append(seq, acc)
	}
	sort.Slice(seq, func(i, j int) bool {
		a, b := seq[i].key, seq[j].key
		if a.month != b.month {
			return a.month < b.month
		}
		if a.l1 != b.l1 {
			return a.l1 < b.l1
		}
		return a.org < b.org
	})

	// previous month's spend per (category, org) series
	prev := make(map[[2]string]float64)

	out := make([]domain.KPICell, 0, len(seq))
	for _, acc := range seq {
		cell := domain.KPICell{
			Month:            acc.key.month,
			CategoryL1:       acc.key.l1,
			OrgUnit:          acc.key.org,
			Spend:            acc.spend,
			TransactionCount: acc.count,
			SupplierCount:    len(acc.suppliers),
			MaverickSpend:    acc.maverickSpend,
		}
		if acc.spend != 0 {
			cell.MaverickPct = acc.maverickSpend / acc.spend
			cell.UnderManagementPct = (acc.spend - acc.maverickSpend) / acc.spend
			cell.Top3Concentration = topNSpend(acc.suppliers, 3) / acc.spend
		}

		series := [2]string{acc.key.l1, acc.key.org}
		if prevSpend, ok := prev[series]; ok && prevSpend != 0 {
			cell.MoMChange = (acc.spend - prevSpend) / prevSpend
		}
		prev[series] = acc.spend

		out = append(out, cell)
	}
	return out
}

// topNSpend sums the n largest supplier spends inside one cell.
func topNSpend(suppliers map[string]float64, n int) float64 {
	spends := make([]float64, 0, len(suppliers))
	for _, s := range suppliers {
		spends = append(spends, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(spends)))
	if len(spends) > n {
		spends = spends[:n]
	}
	var sum float64
	for _, s := range spends {
		sum += s
	}
	return sum
}
