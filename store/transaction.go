package store

// TransactionKind distinguishes money in from money out.
type TransactionKind string

const (
	TransactionIncome  TransactionKind = "income"
	TransactionExpense TransactionKind = "expense"
)

// Transaction is a single financial entry. Amount is stored in minor currency
// units (e.g. paise) to avoid float drift in summaries.
type Transaction struct {
	ID         int64
	Kind       TransactionKind
	Category   string
	Amount     int64
	Note       string
	OccurredTs int64
	CreatedTs  int64
}

type FindTransaction struct {
	ID         *int64
	Kind       *TransactionKind
	Category   *string
	OccurredGe *int64
	OccurredLt *int64
	Limit      *int
	Offset     *int
}

type DeleteTransaction struct {
	ID int64
}

// TransactionSummary aggregates income and expense over a period.
type TransactionSummary struct {
	Income  int64
	Expense int64
}

// Profit returns net income over the summarized period.
func (s *TransactionSummary) Profit() int64 {
	return s.Income - s.Expense
}
