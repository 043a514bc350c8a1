package aggregate

import (
	"log/slog"
	"sort"

	"spendscope/internal/mapping"
	"spendscope/pkg/contracts/domain"
)

// UnknownSupplier labels transactions whose supplier cell stayed empty
// after stitching.
const UnknownSupplier = "Unknown"

// UnassignedOrg labels rows whose business-unit cell is empty or whose
// mapping carries no business-unit column; the org dimension always
// renders at least this placeholder.
const UnassignedOrg = "Unassigned"

// Result is one aggregation pass: the finalized snapshot plus the fact
// transactions with their classification attributes attached.
type Result struct {
	Snapshot     domain.AggregateSnapshot
	Transactions []domain.Transaction
}

// Engine folds canonical rows into the dimensional rollups. A single
// forward pass feeds per-key accumulators; classifications that depend
// on whole-dataset totals run during finalization. Engines are
// stateless across runs and safe to reuse.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an engine with the given options, filling defaults
// for zero values.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{opts: opts.normalized(), logger: logger}
}

type supplierAcc struct {
	name     string
	spend    float64
	count    int
	maverick int
	cats     map[string]bool
}

type categoryAcc struct {
	name      string
	level     int
	spend     float64
	count     int
	suppliers map[string]bool
	children  map[string]*categoryAcc
	childSeq  []*categoryAcc
}

func newCategoryAcc(name string, level int) *categoryAcc {
	return &categoryAcc{
		name:      name,
		level:     level,
		suppliers: make(map[string]bool),
		children:  make(map[string]*categoryAcc),
	}
}

func (c *categoryAcc) child(name string, level int) *categoryAcc {
	if child, ok := c.children[name]; ok {
		return child
	}
	child := newCategoryAcc(name, level)
	c.children[name] = child
	c.childSeq = append(c.childSeq, child)
	return child
}

type orgAcc struct {
	name  string
	spend float64
	count int
}

type monthAcc struct {
	month     string
	spend     float64
	count     int
	suppliers map[string]bool
}

// Aggregate runs the fold and finalization over the canonical rows.
// Zero rows yield an empty snapshot with zeroed totals; a zero grand
// total never produces NaN shares.
func (e *Engine) Aggregate(rows []domain.Row, fm mapping.FieldMapping, currency domain.CurrencyStats) Result {
	proj := newProjector(fm, e.opts)

	transactions := make([]domain.Transaction, 0, len(rows))

	suppliers := make(map[string]*supplierAcc)
	var supplierSeq []*supplierAcc
	categories := make(map[string]*categoryAcc)
	var categorySeq []*categoryAcc
	orgs := make(map[string]*orgAcc)
	var orgSeq []*orgAcc
	months := make(map[string]*monthAcc)

	var totalSpend float64
	var minDate, maxDate string

	for i, row := range rows {
		tx := proj.project(i, row)
		if tx.Supplier == "" {
			tx.Supplier = UnknownSupplier
		}
		transactions = append(transactions, tx)
		totalSpend += tx.Amount

		sup, ok := suppliers[tx.Supplier]
		if !ok {
			sup = &supplierAcc{name: tx.Supplier, cats: make(map[string]bool)}
			suppliers[tx.Supplier] = sup
			supplierSeq = append(supplierSeq, sup)
		}
		sup.spend += tx.Amount
		sup.count++
		sup.cats[tx.CategoryL1] = true
		if tx.Maverick {
			sup.maverick++
		}

		l1, ok := categories[tx.CategoryL1]
		if !ok {
			l1 = newCategoryAcc(tx.CategoryL1, 1)
			categories[tx.CategoryL1] = l1
			categorySeq = append(categorySeq, l1)
		}
		l1.spend += tx.Amount
		l1.count++
		l1.suppliers[tx.Supplier] = true
		if proj.hasL2 {
			l2 := l1.child(tx.CategoryL2, 2)
			l2.spend += tx.Amount
			l2.count++
			l2.suppliers[tx.Supplier] = true
			if proj.hasL3 {
				l3 := l2.child(tx.CategoryL3, 3)
				l3.spend += tx.Amount
				l3.count++
				l3.suppliers[tx.Supplier] = true
			}
		}

		org, ok := orgs[tx.OrgUnit]
		if !ok {
			org = &orgAcc{name: tx.OrgUnit}
			orgs[tx.OrgUnit] = org
			orgSeq = append(orgSeq, org)
		}
		org.spend += tx.Amount
		org.count++

		if tx.HasDate {
			m, ok := months[tx.YearMonth]
			if !ok {
				m = &monthAcc{month: tx.YearMonth, suppliers: make(map[string]bool)}
				months[tx.YearMonth] = m
			}
			m.spend += tx.Amount
			m.count++
			m.suppliers[tx.Supplier] = true

			day := tx.Date.Format("2006-01-02")
			if minDate == "" || day < minDate {
				minDate = day
			}
			if day > maxDate {
				maxDate = day
			}
		}
	}

	snapshot := domain.AggregateSnapshot{
		TotalSpend:       totalSpend,
		TransactionCount: len(transactions),
		PeriodStart:      minDate,
		PeriodEnd:        maxDate,
		Currency:         currency,
	}
	if len(transactions) > 0 {
		snapshot.AverageTransaction = totalSpend / float64(len(transactions))
	}

	snapshot.Suppliers = e.finalizeSuppliers(supplierSeq, totalSpend, snapshot.AverageTransaction)
	snapshot.SupplierCount = len(snapshot.Suppliers)
	snapshot.Categories = finalizeCategories(categorySeq, totalSpend)
	snapshot.CategoryCount = len(snapshot.Categories)
	snapshot.OrgUnits = finalizeOrgs(orgSeq, totalSpend)
	snapshot.Months = finalizeMonths(months)
	snapshot.Cube = buildCube(transactions)
	snapshot.Quality = buildQuality(rows, fm)

	attachClassifications(transactions, snapshot.Suppliers)

	e.logger.Debug("aggregation complete",
		slog.Int("transactions", snapshot.TransactionCount),
		slog.Float64("total_spend", snapshot.TotalSpend),
		slog.Int("suppliers", snapshot.SupplierCount),
		slog.Int("categories", snapshot.CategoryCount),
		slog.Int("cube_cells", len(snapshot.Cube)))

	return Result{Snapshot: snapshot, Transactions: transactions}
}

// finalizeSuppliers sorts the accumulators descending by spend (ties by
// insertion order), assigns ABC classes along the cumulative walk and
// applies the tail-spend and maverick-rate computations.
func (e *Engine) finalizeSuppliers(seq []*supplierAcc, totalSpend, avgTx float64) []domain.Supplier {
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].spend > seq[j].spend
	})

	tailCeiling := e.opts.TailSpendMultiplier * avgTx

	out := make([]domain.Supplier, 0, len(seq))
	var cumulative float64
	for _, acc := range seq {
		cumulative += acc.spend

		s := domain.Supplier{
			Name:             acc.name,
			TotalSpend:       acc.spend,
			TransactionCount: acc.count,
			MaverickCount:    acc.maverick,
			Categories:       sortedSetKeys(acc.cats),
			Class:            classFor(cumulative, totalSpend, e.opts.ABCThresholds),
			TailSpend:        acc.spend > 0 && acc.spend < tailCeiling,
		}
		if acc.count > 0 {
			s.AverageTransaction = acc.spend / float64(acc.count)
			s.MaverickRate = float64(acc.maverick) / float64(acc.count)
		}
		if totalSpend != 0 {
			s.SpendShare = acc.spend / totalSpend
		}
		out = append(out, s)
	}
	return out
}

// classFor assigns an ABC class from the cumulative spend fraction.
// The walk is monotone, so classes are contiguous in sorted order.
func classFor(cumulative, total float64, t ABCThresholds) domain.ABCClass {
	if total == 0 {
		return domain.ClassA
	}
	const eps = 1e-9
	frac := cumulative / total
	switch {
	case frac <= t.A+eps:
		return domain.ClassA
	case frac <= t.B+eps:
		return domain.ClassB
	default:
		return domain.ClassC
	}
}

func finalizeCategories(seq []*categoryAcc, totalSpend float64) []domain.CategoryNode {
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].spend > seq[j].spend
	})

	out := make([]domain.CategoryNode, 0, len(seq))
	for _, acc := range seq {
		node := domain.CategoryNode{
			Name:             acc.name,
			Level:            acc.level,
			TotalSpend:       acc.spend,
			TransactionCount: acc.count,
			SupplierCount:    len(acc.suppliers),
		}
		if totalSpend != 0 {
			node.SpendShare = acc.spend / totalSpend
		}
		if len(acc.childSeq) > 0 {
			node.Children = finalizeCategories(acc.childSeq, totalSpend)
		}
		out = append(out, node)
	}
	return out
}

func finalizeOrgs(seq []*orgAcc, totalSpend float64) []domain.OrgUnit {
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].spend > seq[j].spend
	})

	out := make([]domain.OrgUnit, 0, len(seq))
	for _, acc := range seq {
		org := domain.OrgUnit{
			Name:             acc.name,
			TotalSpend:       acc.spend,
			TransactionCount: acc.count,
		}
		if totalSpend != 0 {
			org.SpendShare = acc.spend / totalSpend
		}
		out = append(out, org)
	}
	return out
}

func finalizeMonths(months map[string]*monthAcc) []domain.MonthPoint {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.MonthPoint, 0, len(keys))
	for _, k := range keys {
		acc := months[k]
		p := domain.MonthPoint{
			Month:            acc.month,
			TotalSpend:       acc.spend,
			TransactionCount: acc.count,
			SupplierCount:    len(acc.suppliers),
		}
		if acc.count > 0 {
			p.AverageTransaction = acc.spend / float64(acc.count)
		}
		out = append(out, p)
	}
	return out
}

// attachClassifications copies the finalized per-supplier attributes
// onto each fact transaction.
func attachClassifications(transactions []domain.Transaction, suppliers []domain.Supplier) {
	byName := make(map[string]*domain.Supplier, len(suppliers))
	for i := range suppliers {
		byName[suppliers[i].Name] = &suppliers[i]
	}
	for i := range transactions {
		if s, ok := byName[transactions[i].Supplier]; ok {
			transactions[i].ABCClass = s.Class
			transactions[i].TailSpend = s.TailSpend
		}
	}
}

func sortedSetKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
