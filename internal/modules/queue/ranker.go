package queue

import (
	"sort"

	"github.com/samber/lo"

	"karaoke/internal/domain"
)

// djTable is the sentinel group for songs whose guest has no table (the
// operator's DJ picks). It always gets the top quota.
const djTable int64 = 0

// Rank produces the strict total order of a song pool:
//
//  1. Songs with a manual override rank come first, ascending by rank
//     (ties by id), regardless of table or tier.
//  2. The rest are grouped by table and served round-robin. Per round a
//     table plays up to its tier quota (gold 3, silver 2, bronze 1) in
//     its own arrival order. Tables take turns in order of their first
//     song's arrival.
//
// Rank is a pure function of its inputs: identical state yields an
// identical order, with request id as the universal tie break.
func Rank(songs []domain.Song, tiers map[int64]domain.SpendTier) []domain.Song {
	manual := make([]domain.Song, 0)
	auto := make([]domain.Song, 0, len(songs))
	for _, s := range songs {
		if s.ManualOrder != nil {
			manual = append(manual, s)
		} else {
			auto = append(auto, s)
		}
	}

	sort.SliceStable(manual, func(i, j int) bool {
		if *manual[i].ManualOrder != *manual[j].ManualOrder {
			return *manual[i].ManualOrder < *manual[j].ManualOrder
		}
		return manual[i].ID < manual[j].ID
	})

	sort.SliceStable(auto, func(i, j int) bool { return auto[i].ID < auto[j].ID })

	pools := lo.GroupBy(auto, groupTable)

	// turn order: table whose first pool song arrived earliest goes first
	tables := lo.Keys(pools)
	sort.Slice(tables, func(i, j int) bool {
		return pools[tables[i]][0].ID < pools[tables[j]][0].ID
	})

	out := make([]domain.Song, 0, len(songs))
	out = append(out, manual...)

	remaining := len(auto)
	for remaining > 0 {
		for _, t := range tables {
			pool := pools[t]
			if len(pool) == 0 {
				continue
			}
			take := quotaFor(t, tiers)
			if take > len(pool) {
				take = len(pool)
			}
			out = append(out, pool[:take]...)
			pools[t] = pool[take:]
			remaining -= take
		}
	}

	return out
}

func groupTable(s domain.Song) int64 {
	if s.TableID == nil {
		return djTable
	}
	return *s.TableID
}

func quotaFor(table int64, tiers map[int64]domain.SpendTier) int {
	if table == djTable {
		return domain.TierGold.SongQuota()
	}
	tier, ok := tiers[table]
	if !ok {
		tier = domain.TierBronze
	}
	return tier.SongQuota()
}
