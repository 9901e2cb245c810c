package insight

import (
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

// categoryKey is an interned category identifier, valid for a single
// grouping pass. Keying buckets by int rather than by display label
// keeps label comparison at the interning boundary and makes the
// name-based identity explicit in one place.
type categoryKey int

// categoryTable interns category labels for one grouping pass.
type categoryTable struct {
	keys   map[string]categoryKey
	labels []string
}

func newCategoryTable() *categoryTable {
	return &categoryTable{keys: make(map[string]categoryKey)}
}

// intern returns the key for a label, allocating one on first sight.
func (t *categoryTable) intern(label string) categoryKey {
	if key, ok := t.keys[label]; ok {
		return key
	}
	key := categoryKey(len(t.labels))
	t.keys[label] = key
	t.labels = append(t.labels, label)
	return key
}

// label returns the display label for a key.
func (t *categoryTable) label(key categoryKey) string {
	return t.labels[key]
}

// lookup returns the key for a label if it was interned.
func (t *categoryTable) lookup(label string) (categoryKey, bool) {
	key, ok := t.keys[label]
	return key, ok
}

// filterExpenses returns only the transactions that move money out.
func filterExpenses(txns []model.Transaction) []model.Transaction {
	var expenses []model.Transaction
	for _, tx := range txns {
		if tx.IsExpense() {
			expenses = append(expenses, tx)
		}
	}
	return expenses
}

// categoryLabel resolves a transaction's category, substituting the
// fallback when none is assigned.
func categoryLabel(tx model.Transaction, fallback string) string {
	if tx.Category == "" {
		return fallback
	}
	return tx.Category
}

// monthStart normalizes a timestamp to the first of its calendar month
// in the engine's location.
func (e *Engine) monthStart(ts time.Time) time.Time {
	year, month, _ := ts.In(e.location).Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, e.location)
}

// dayStart normalizes a timestamp to midnight of its calendar day in
// the engine's location.
func (e *Engine) dayStart(ts time.Time) time.Time {
	year, month, day := ts.In(e.location).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, e.location)
}

// groupByCategory buckets transactions by interned category key.
func (e *Engine) groupByCategory(txns []model.Transaction, fallback string) (map[categoryKey][]model.Transaction, *categoryTable) {
	table := newCategoryTable()
	groups := make(map[categoryKey][]model.Transaction)
	for _, tx := range txns {
		key := table.intern(categoryLabel(tx, fallback))
		groups[key] = append(groups[key], tx)
	}
	return groups, table
}

// GroupByCategory buckets transactions by category label. Transactions
// without a category fall under the "General" label. An empty input
// yields an empty map.
func (e *Engine) GroupByCategory(txns []model.Transaction) map[string][]model.Transaction {
	groups, table := e.groupByCategory(txns, model.DefaultBudgetCategory)
	result := make(map[string][]model.Transaction, len(groups))
	for key, bucket := range groups {
		result[table.label(key)] = bucket
	}
	return result
}

// GroupByCategoryMonth buckets transactions by category label and then
// by normalized month (the first-of-month date in the engine's
// calendar). Two transactions share a month bucket iff their
// normalized months are equal.
func (e *Engine) GroupByCategoryMonth(txns []model.Transaction) map[string]map[time.Time][]model.Transaction {
	result := make(map[string]map[time.Time][]model.Transaction)
	for _, tx := range txns {
		label := categoryLabel(tx, model.DefaultBudgetCategory)
		month := e.monthStart(tx.Date)

		months, ok := result[label]
		if !ok {
			months = make(map[time.Time][]model.Transaction)
			result[label] = months
		}
		months[month] = append(months[month], tx)
	}
	return result
}
