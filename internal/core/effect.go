package core

// The single sign convention for the whole system: a balance delta is the
// signed cash effect on the account, positive increases the balance.
// Income adds money, expense and contribution remove it. Reversal is
// negation. Every create/edit/delete flow derives its deltas here.

// BalanceDelta is a signed adjustment to one account's stored balance.
type BalanceDelta struct {
	AccountID string
	Cents     int64
}

// GoalDelta is a signed adjustment to one goal's current_amount.
type GoalDelta struct {
	GoalID string
	Cents  int64
}

// CashEffect returns the signed effect of a transaction on its account.
func CashEffect(t TransactionType, amount Money) int64 {
	if t == Income {
		return amount.Cents
	}
	return -amount.Cents
}

// ReconcileBalances computes the account adjustments needed to move the
// stored balances from reflecting old to reflecting new. A nil old is a
// create, a nil new is a delete. On an account change the old account gets
// a full reversal and the new account the full new effect; on the same
// account a single net delta is emitted. Zero deltas are dropped.
func ReconcileBalances(old, new *Transaction) []BalanceDelta {
	var out []BalanceDelta
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		out = append(out, BalanceDelta{AccountID: new.AccountID, Cents: CashEffect(new.Type, new.Amount)})
	case new == nil:
		out = append(out, BalanceDelta{AccountID: old.AccountID, Cents: -CashEffect(old.Type, old.Amount)})
	case old.AccountID != new.AccountID:
		out = append(out,
			BalanceDelta{AccountID: old.AccountID, Cents: -CashEffect(old.Type, old.Amount)},
			BalanceDelta{AccountID: new.AccountID, Cents: CashEffect(new.Type, new.Amount)},
		)
	default:
		net := CashEffect(new.Type, new.Amount) - CashEffect(old.Type, old.Amount)
		out = append(out, BalanceDelta{AccountID: new.AccountID, Cents: net})
	}
	return dropZeroBalances(out)
}

// ReconcileGoals computes the goal-progress adjustments between old and
// new. Goal progress always moves by the raw amount: a linked transaction
// contributes +amount, its reversal -amount, regardless of type.
func ReconcileGoals(old, new *Transaction) []GoalDelta {
	var oldGoal, newGoal string
	var oldCents, newCents int64
	if old != nil {
		oldGoal, oldCents = old.GoalID, old.Amount.Cents
	}
	if new != nil {
		newGoal, newCents = new.GoalID, new.Amount.Cents
	}

	var out []GoalDelta
	switch {
	case oldGoal == "" && newGoal == "":
		return nil
	case oldGoal == newGoal:
		out = append(out, GoalDelta{GoalID: newGoal, Cents: newCents - oldCents})
	default:
		if oldGoal != "" {
			out = append(out, GoalDelta{GoalID: oldGoal, Cents: -oldCents})
		}
		if newGoal != "" {
			out = append(out, GoalDelta{GoalID: newGoal, Cents: newCents})
		}
	}
	return dropZeroGoals(out)
}

func dropZeroBalances(in []BalanceDelta) []BalanceDelta {
	out := in[:0]
	for _, d := range in {
		if d.Cents != 0 {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func dropZeroGoals(in []GoalDelta) []GoalDelta {
	out := in[:0]
	for _, d := range in {
		if d.Cents != 0 {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
