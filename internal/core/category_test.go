package core

import "testing"

func TestCategoryRoundTrip(t *testing.T) {
	tests := []struct {
		txType     TransactionType
		categoryID string
	}{
		{Income, "cat-salary"},
		{Expense, "cat-groceries"},
		{Income, ""},
		{Expense, ""},
	}

	for _, tt := range tests {
		ref := SplitCategory(tt.txType, tt.categoryID)
		if got := MergeCategory(tt.txType, ref); got != tt.categoryID {
			t.Errorf("MergeCategory(%s, SplitCategory(%s, %q)) = %q, want %q",
				tt.txType, tt.txType, tt.categoryID, got, tt.categoryID)
		}
	}
}

func TestSplitCategoryMutualExclusivity(t *testing.T) {
	ref := SplitCategory(Income, "c1")
	if ref.IncomeCategoryID != "c1" || ref.ExpenseCategoryID != "" {
		t.Errorf("income split got %+v, want only income column set", ref)
	}

	ref = SplitCategory(Expense, "c2")
	if ref.ExpenseCategoryID != "c2" || ref.IncomeCategoryID != "" {
		t.Errorf("expense split got %+v, want only expense column set", ref)
	}

	// A contribution never carries a category, but the mapper itself routes
	// a non-empty id to the expense column like any non-income type.
	ref = SplitCategory(Contribution, "c3")
	if ref.ExpenseCategoryID != "c3" || ref.IncomeCategoryID != "" {
		t.Errorf("contribution split got %+v, want only expense column set", ref)
	}
}

func TestMergeCategoryPrefersColumnMatchingType(t *testing.T) {
	// Corrupted row with both columns set: the column matching the type
	// wins, the other is silently ignored.
	both := CategoryRef{IncomeCategoryID: "inc", ExpenseCategoryID: "exp"}

	if got := MergeCategory(Income, both); got != "inc" {
		t.Errorf("MergeCategory(income, both) = %q, want %q", got, "inc")
	}
	if got := MergeCategory(Expense, both); got != "exp" {
		t.Errorf("MergeCategory(expense, both) = %q, want %q", got, "exp")
	}
}

func TestMergeCategoryUncategorized(t *testing.T) {
	if got := MergeCategory(Income, CategoryRef{}); got != "" {
		t.Errorf("MergeCategory on empty ref = %q, want empty string", got)
	}
	// Income row whose only value sits in the wrong column reads as
	// uncategorized rather than borrowing the mismatched id.
	if got := MergeCategory(Income, CategoryRef{ExpenseCategoryID: "exp"}); got != "" {
		t.Errorf("MergeCategory(income, expense-only ref) = %q, want empty string", got)
	}
}
