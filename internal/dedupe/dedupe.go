// Package dedupe resolves characters that share a name within a house.
package dedupe

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/easeaico/companion-house/internal/types"
)

// NameKey is the grouping key of a character name: trimmed and case-folded.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Score ranks a duplicate; the richest and most recently used record wins.
func Score(c types.Character, now time.Time) int {
	score := 0
	if n := len(c.ConversationHistory); n > 0 {
		score += 1000 + 10*n
	}
	if n := len(c.Memories); n > 0 {
		score += 500 + 5*n
	}
	if c.Progression != nil {
		if n := len(c.Progression.StoryChronicle); n > 0 {
			score += 300 + 3*n
		}
		score += c.Progression.Affection + c.Progression.Trust + c.Progression.Intimacy
	}
	if c.Stats != nil {
		score += c.Stats.Love + c.Stats.Happiness
	}
	days := int(now.Sub(c.UpdatedAt).Hours() / 24)
	score += max(0, 100-days)
	return score
}

// resolve groups the roster and picks the winner of every duplicated name. Losers are
// reported by roster index, since legacy rosters can hold several characters with one id.
func resolve(characters []types.Character, now time.Time) ([]types.DuplicateGroup, map[int]struct{}) {
	groups := make(map[string][]int)
	var order []string
	for i, c := range characters {
		key := NameKey(c.Name)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	var result []types.DuplicateGroup
	removed := make(map[int]struct{})
	for _, key := range order {
		idx := groups[key]
		if len(idx) < 2 {
			continue
		}
		ranked := slices.Clone(idx)
		slices.SortStableFunc(ranked, func(a, b int) int {
			if c := cmp.Compare(Score(characters[b], now), Score(characters[a], now)); c != 0 {
				return c
			}
			return strings.Compare(characters[a].ID, characters[b].ID)
		})

		members := make([]types.Character, 0, len(idx))
		for _, i := range idx {
			members = append(members, characters[i])
		}
		losers := make([]types.Character, 0, len(ranked)-1)
		for _, i := range ranked[1:] {
			removed[i] = struct{}{}
			losers = append(losers, characters[i])
		}
		result = append(result, types.DuplicateGroup{
			Name:              characters[idx[0]].Name,
			Characters:        members,
			KeptCharacter:     characters[ranked[0]],
			RemovedCharacters: losers,
		})
	}
	return result, removed
}

// CleanupDuplicateCharacters keeps one character per case-folded name and removes the others
// from the roster and from every room. The input house is not modified.
func CleanupDuplicateCharacters(house types.House, now time.Time) (types.House, types.DuplicateCleanupResult) {
	return CleanupDuplicateCharactersWithIDs(house, now, uuid.NewString)
}

// CleanupDuplicateCharactersWithIDs is CleanupDuplicateCharacters with the id generator used
// when two kept characters share an id. The first holder keeps the id; later ones get a new one.
func CleanupDuplicateCharactersWithIDs(house types.House, now time.Time, newID func() string) (types.House, types.DuplicateCleanupResult) {
	groups, removed := resolve(house.Characters, now)

	out := house
	out.Characters = make([]types.Character, 0, len(house.Characters)-len(removed))
	held := make(map[string]struct{}, len(house.Characters))
	for i, c := range house.Characters {
		if _, gone := removed[i]; gone {
			continue
		}
		if _, taken := held[c.ID]; taken {
			for {
				c.ID = newID()
				if _, taken := held[c.ID]; !taken {
					break
				}
			}
		}
		held[c.ID] = struct{}{}
		out.Characters = append(out.Characters, c)
	}

	// a resident id is dropped only when no kept character still answers to it
	dropped := make(map[string]struct{})
	for i := range removed {
		if id := house.Characters[i].ID; !contains(held, id) {
			dropped[id] = struct{}{}
		}
	}
	out.Rooms = make([]types.Room, 0, len(house.Rooms))
	for _, room := range house.Rooms {
		room.Residents = slices.DeleteFunc(slices.Clone(room.Residents), func(id string) bool {
			return contains(dropped, id)
		})
		out.Rooms = append(out.Rooms, room)
	}
	out.UpdatedAt = now

	return out, types.DuplicateCleanupResult{
		RemovedCount:    len(removed),
		KeptCount:       len(out.Characters),
		DuplicateGroups: groupsOrEmpty(groups),
	}
}

// PreviewDuplicateCleanup reports what CleanupDuplicateCharacters would do without doing it.
func PreviewDuplicateCleanup(house types.House, now time.Time) types.DuplicateCleanupResult {
	groups, removed := resolve(house.Characters, now)
	return types.DuplicateCleanupResult{
		RemovedCount:    len(removed),
		KeptCount:       len(house.Characters) - len(removed),
		DuplicateGroups: groupsOrEmpty(groups),
	}
}

func groupsOrEmpty(groups []types.DuplicateGroup) []types.DuplicateGroup {
	if groups == nil {
		return []types.DuplicateGroup{}
	}
	return groups
}

func contains(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
