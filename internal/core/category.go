package core

// CategoryRef mirrors the two physical category columns on a transaction
// row. Exactly one side is set for income/expense rows; both are empty for
// contributions, which are categorized implicitly as goal contributions.
type CategoryRef struct {
	IncomeCategoryID  string
	ExpenseCategoryID string
}

func (r CategoryRef) Empty() bool {
	return r.IncomeCategoryID == "" && r.ExpenseCategoryID == ""
}

// SplitCategory maps a logical category id onto the column the given
// transaction type stores it in. The opposite column is always empty, so a
// row update through this mapping clears any stale value there.
func SplitCategory(t TransactionType, categoryID string) CategoryRef {
	if categoryID == "" {
		return CategoryRef{}
	}
	if t == Income {
		return CategoryRef{IncomeCategoryID: categoryID}
	}
	return CategoryRef{ExpenseCategoryID: categoryID}
}

// MergeCategory recovers the logical category id from a stored row. When a
// corrupted row has both columns populated, the column matching the row's
// type wins and the other is ignored. An unset category comes back as "",
// meaning uncategorized.
func MergeCategory(t TransactionType, r CategoryRef) string {
	if t == Income && r.IncomeCategoryID != "" {
		return r.IncomeCategoryID
	}
	if t != Income && r.ExpenseCategoryID != "" {
		return r.ExpenseCategoryID
	}
	return ""
}
