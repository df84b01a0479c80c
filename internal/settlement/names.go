package settlement

import (
	"strings"

	"github.com/fortuna/augur/internal/names"
	"github.com/fortuna/augur/internal/store"
)

// FindPlayerStat locates the boxscore row for a bet's stored player name.
// Sportsbooks, BDL, and users never agree on spelling, so matching runs in
// tiers and the first tier with a hit wins:
//  1. exact normalized match;
//  2. same last name + same first initial;
//  3. token-aligned containment, either direction ("curry" matches
//     "stephen curry", "luka doncic" matches "doncic").
func FindPlayerStat(rows []*store.PlayerGameStat, playerName string) (*store.PlayerGameStat, bool) {
	target := names.Normalize(playerName)
	if target == "" {
		return nil, false
	}

	for _, row := range rows {
		if names.Normalize(row.PlayerName) == target {
			return row, true
		}
	}

	targetToks := strings.Split(target, " ")
	if len(targetToks) >= 2 {
		for _, row := range rows {
			rowToks := names.Tokens(row.PlayerName)
			if len(rowToks) < 2 {
				continue
			}
			if rowToks[len(rowToks)-1] == targetToks[len(targetToks)-1] &&
				rowToks[0][0] == targetToks[0][0] {
				return row, true
			}
		}
	}

	for _, row := range rows {
		rowNorm := names.Normalize(row.PlayerName)
		if rowNorm == "" {
			continue
		}
		if containsTokens(rowNorm, target) || containsTokens(target, rowNorm) {
			return row, true
		}
	}

	return nil, false
}

// containsTokens reports whether needle appears inside haystack aligned to
// word boundaries. "cur" must not match "stephen curry".
func containsTokens(haystack, needle string) bool {
	if haystack == needle {
		return true
	}
	return strings.HasPrefix(haystack, needle+" ") ||
		strings.HasSuffix(haystack, " "+needle) ||
		strings.Contains(haystack, " "+needle+" ")
}
