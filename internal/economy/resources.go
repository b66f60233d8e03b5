// Package economy provides the value types of the territorial economy:
// wallets, inventories, energy budgets, and the parameterized game mode.
package economy

import (
	"errors"
	"fmt"
)

// PlayerID identifies one participant. The mode's player order is the turn order.
type PlayerID string

// ErrInsufficientFunds is returned by wallet debits that would go negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallets maps players to non-negative token balances.
type Wallets map[PlayerID]int64

// Clone returns an independent copy.
func (w Wallets) Clone() Wallets {
	out := make(Wallets, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Total returns the sum of all balances.
func (w Wallets) Total() int64 {
	var sum int64
	for _, v := range w {
		sum += v
	}
	return sum
}

// Credit mints amount into p's wallet.
func (w Wallets) Credit(p PlayerID, amount int64) {
	w[p] += amount
}

// Debit removes amount from p's wallet, refusing to go negative.
func (w Wallets) Debit(p PlayerID, amount int64) error {
	if w[p] < amount {
		return fmt.Errorf("debit %d from %s (balance %d): %w", amount, p, w[p], ErrInsufficientFunds)
	}
	w[p] -= amount
	return nil
}

// Transfer moves amount from one wallet to another. Either both sides
// change or neither does.
func (w Wallets) Transfer(from, to PlayerID, amount int64) error {
	if err := w.Debit(from, amount); err != nil {
		return err
	}
	w[to] += amount
	return nil
}

// Inventory counts discrete resources held by one team.
type Inventory struct {
	Ore      int `json:"ore"`
	Ice      int `json:"ice"`
	Artifact int `json:"artifact"`
	RareItem int `json:"rare_item"`
}

// Add returns the element-wise sum.
func (i Inventory) Add(o Inventory) Inventory {
	return Inventory{
		Ore:      i.Ore + o.Ore,
		Ice:      i.Ice + o.Ice,
		Artifact: i.Artifact + o.Artifact,
		RareItem: i.RareItem + o.RareItem,
	}
}

// Covers reports whether every count in i is at least the count in cost.
func (i Inventory) Covers(cost Inventory) bool {
	return i.Ore >= cost.Ore &&
		i.Ice >= cost.Ice &&
		i.Artifact >= cost.Artifact &&
		i.RareItem >= cost.RareItem
}

// Sub returns i minus cost. Callers check Covers first.
func (i Inventory) Sub(cost Inventory) Inventory {
	return Inventory{
		Ore:      i.Ore - cost.Ore,
		Ice:      i.Ice - cost.Ice,
		Artifact: i.Artifact - cost.Artifact,
		RareItem: i.RareItem - cost.RareItem,
	}
}

// Energy is a team's power budget. 0 <= Current <= Capacity.
type Energy struct {
	Current  int `json:"current"`
	Capacity int `json:"capacity"`
}

// Gain adds amount, capped at capacity.
func (e Energy) Gain(amount int) Energy {
	if amount < 0 {
		amount = 0
	}
	e.Current = min(e.Capacity, e.Current+amount)
	return e
}

// Spend removes amount. Callers check Current >= amount first.
func (e Energy) Spend(amount int) Energy {
	e.Current -= amount
	return e
}
