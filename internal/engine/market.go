package engine

import (
	"fmt"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/world"
)

// Claim buys an explored, unowned cell from the system at the claim price.
// The price is burned.
func (e *Engine) Claim(s State, p economy.PlayerID, cell world.CellID) (Result, error) {
	if err := e.checkActor(s, p); err != nil {
		return unchanged(s), err
	}
	if err := e.checkTradeCell(cell); err != nil {
		return unchanged(s), err
	}
	if !s.Teams[p].HasExplored(cell) {
		return unchanged(s), ErrNotExplored
	}
	if _, owned := s.Cells[cell]; owned {
		return unchanged(s), ErrAlreadyOwned
	}
	if s.Wallets[p] < e.Mode.ClaimPrice {
		return unchanged(s), ErrInsufficientBalance
	}

	next := s.Clone()
	if err := next.Wallets.Debit(p, e.Mode.ClaimPrice); err != nil {
		return unchanged(s), ErrInsufficientBalance
	}
	next.Cells[cell] = OwnedCell{Owner: p, UpdatedAt: e.now()}

	event := fmt.Sprintf("%s claimed %s for %d %s.", e.label(p), cell, e.Mode.ClaimPrice, e.Mode.Currency)
	return e.advance(&next, event), nil
}

// List offers an owned cell for sale. Listing a cell the player does not
// own is a silent no-op.
func (e *Engine) List(s State, p economy.PlayerID, cell world.CellID, price int64) (Result, error) {
	if err := e.checkActor(s, p); err != nil {
		return unchanged(s), err
	}
	if err := e.checkTradeCell(cell); err != nil {
		return unchanged(s), err
	}
	oc, ok := s.Cells[cell]
	if !ok || oc.Owner != p {
		return unchanged(s), nil
	}
	if price < e.Mode.MinListPrice {
		return unchanged(s), ErrPriceTooLow
	}

	next := s.Clone()
	oc.ListedPrice = &price
	oc.UpdatedAt = e.now()
	next.Cells[cell] = oc

	event := fmt.Sprintf("%s listed %s for %d %s.", e.label(p), cell, price, e.Mode.Currency)
	return e.advance(&next, event), nil
}

// Unlist withdraws a listing. Unlisting a cell the player does not own, or
// one that is not listed, is a silent no-op.
func (e *Engine) Unlist(s State, p economy.PlayerID, cell world.CellID) (Result, error) {
	if err := e.checkActor(s, p); err != nil {
		return unchanged(s), err
	}
	if err := e.checkTradeCell(cell); err != nil {
		return unchanged(s), err
	}
	oc, ok := s.Cells[cell]
	if !ok || oc.Owner != p || !oc.Listed() {
		return unchanged(s), nil
	}

	next := s.Clone()
	oc.ListedPrice = nil
	oc.UpdatedAt = e.now()
	next.Cells[cell] = oc

	event := fmt.Sprintf("%s removed %s from the market.", e.label(p), cell)
	return e.advance(&next, event), nil
}

// Buy transfers a listed cell to the player. The price moves from buyer to
// seller atomically and the listing is cleared.
func (e *Engine) Buy(s State, p economy.PlayerID, cell world.CellID) (Result, error) {
	if err := e.checkActor(s, p); err != nil {
		return unchanged(s), err
	}
	if err := e.checkTradeCell(cell); err != nil {
		return unchanged(s), err
	}
	oc, ok := s.Cells[cell]
	if !ok {
		return unchanged(s), ErrNotListed
	}
	if oc.Owner == p {
		return unchanged(s), ErrOwnCell
	}
	if !oc.Listed() {
		return unchanged(s), ErrNotListed
	}
	price := *oc.ListedPrice
	if s.Wallets[p] < price {
		return unchanged(s), ErrInsufficientBalance
	}

	next := s.Clone()
	seller := oc.Owner
	if err := next.Wallets.Transfer(p, seller, price); err != nil {
		return unchanged(s), ErrInsufficientBalance
	}
	next.Cells[cell] = OwnedCell{Owner: p, UpdatedAt: e.now()}

	event := fmt.Sprintf("%s bought %s from %s for %d %s.",
		e.label(p), cell, e.label(seller), price, e.Mode.Currency)
	return e.advance(&next, event), nil
}
