package autopilot

import (
	"cmp"
	"slices"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/world"
)

// Position holds the derived signals for one player computed from a
// Snapshot. Deterministic and free; it runs before Decide.
type Position struct {
	Player  economy.PlayerID
	MyTurn  bool
	Balance int64
	Team    engine.Team
	HasTeam bool

	Owned      []world.CellID // mine, poorest first
	Claimable  []world.CellID // explored by me and unowned, best first
	Unexplored []world.CellID // not yet explored by me, best first
	Mineable   []world.CellID // explored by me, richest first
	Offers     []Offer        // listed by others, cheapest first

	RingHeld int    // monument ring cells I own
	Phase    string // "SURVEY", "EXPAND", "BUILD", "TERRAFORM"
}

// Offer is a cell another player listed for sale.
type Offer struct {
	Cell   world.CellID
	Seller economy.PlayerID
	Price  int64
	Ring   bool // on the monument ring
}

// Assess computes the player's position.
func Assess(snap *Snapshot, player economy.PlayerID) *Position {
	st := snap.State
	rules := snap.Status.Rules
	team, hasTeam := st.Teams[player]

	p := &Position{
		Player:  player,
		MyTurn:  rules.Rotation != economy.RotationAuto || snap.Status.ActivePlayer == player,
		Balance: st.Wallets[player],
		Team:    team,
		HasTeam: hasTeam,
	}

	zone := make(map[world.CellID]ZoneCell, len(snap.Zone))
	for _, z := range snap.Zone {
		zone[z.ID] = z
	}
	better := func(a, b world.CellID) int {
		za, zb := zone[a], zone[b]
		if za.MonumentRing != zb.MonumentRing {
			if za.MonumentRing {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(zb.Richness, za.Richness); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}

	for _, z := range snap.Zone {
		if z.Monument {
			continue
		}
		oc, owned := st.Cells[z.ID]
		explored := team.HasExplored(z.ID)
		switch {
		case owned && oc.Owner == player:
			p.Owned = append(p.Owned, z.ID)
			if z.MonumentRing {
				p.RingHeld++
			}
		case owned && oc.Listed():
			p.Offers = append(p.Offers, Offer{Cell: z.ID, Seller: oc.Owner, Price: *oc.ListedPrice, Ring: z.MonumentRing})
		case !owned && explored:
			p.Claimable = append(p.Claimable, z.ID)
		}
		if explored {
			p.Mineable = append(p.Mineable, z.ID)
		} else {
			p.Unexplored = append(p.Unexplored, z.ID)
		}
	}

	slices.SortFunc(p.Owned, func(a, b world.CellID) int { return better(b, a) })
	slices.SortFunc(p.Claimable, better)
	slices.SortFunc(p.Unexplored, better)
	slices.SortFunc(p.Mineable, func(a, b world.CellID) int {
		if c := cmp.Compare(zone[b].Richness, zone[a].Richness); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	slices.SortFunc(p.Offers, func(a, b Offer) int {
		if c := cmp.Compare(a.Price, b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Cell, b.Cell)
	})

	switch {
	case rules.Energy.Enabled && team.BaseLevel > 0 && !snap.Status.Completed:
		p.Phase = "TERRAFORM"
	case rules.Energy.Enabled && p.Balance >= rules.Costs.BuildTokens:
		p.Phase = "BUILD"
	case len(p.Claimable) > 0 || len(p.Offers) > 0:
		p.Phase = "EXPAND"
	default:
		p.Phase = "SURVEY"
	}
	return p
}
