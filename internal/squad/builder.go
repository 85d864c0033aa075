// Package squad deterministically partitions a match's player pools into a
// starting squad and a reserve list. Pure functions only; ordering decides
// who is guaranteed a playing spot, so it must stay exact.
package squad

import "github.com/nelalmis/league-match-service/internal/model"

// Selection is the builder output. Dropped players overflowed both
// capacities and go back to the organizer for manual handling.
type Selection struct {
	Squad    []string
	Reserves []string
	Dropped  []string
}

// Build fills the squad in priority order: direct players first (always in,
// even past squadSize), then premium, then registered in registration order,
// then guests. Once the squad is full the remainder spills into reserves up
// to reserveSize, and anything beyond that is dropped.
func Build(pools model.MatchPools, squadSize, reserveSize int) Selection {
	sel := Selection{
		Squad:    make([]string, 0, squadSize),
		Reserves: make([]string, 0, reserveSize),
	}
	seen := make(map[string]bool)

	// Direct players bypass the capacity check; squadSize becomes a soft
	// target once they are counted.
	for _, id := range pools.Direct {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		sel.Squad = append(sel.Squad, id)
	}

	place := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		switch {
		case len(sel.Squad) < squadSize:
			sel.Squad = append(sel.Squad, id)
		case len(sel.Reserves) < reserveSize:
			sel.Reserves = append(sel.Reserves, id)
		default:
			sel.Dropped = append(sel.Dropped, id)
		}
	}

	for _, id := range pools.Premium {
		place(id)
	}
	for _, id := range pools.Registered {
		place(id)
	}
	for _, id := range pools.Guests {
		place(id)
	}
	return sel
}

// SplitTeams deals a squad into two rosters by alternating picks, which keeps
// sizes balanced (team1 gets the extra player on odd squads).
func SplitTeams(squad []string) (team1, team2 []string) {
	team1 = make([]string, 0, (len(squad)+1)/2)
	team2 = make([]string, 0, len(squad)/2)
	for i, id := range squad {
		if i%2 == 0 {
			team1 = append(team1, id)
		} else {
			team2 = append(team2, id)
		}
	}
	return team1, team2
}
