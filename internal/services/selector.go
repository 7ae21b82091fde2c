package services

import (
	"hash/fnv"
	"math/rand"
	"sort"
)

// perPoolCount is how many quests are drawn from each pool per day.
const perPoolCount = 2

// SelectDailyQuests picks a stable subset of the candidate pools for a
// calendar day. The date string seeds a private PRNG instance so the same
// date always yields the same selection across calls and restarts, and no
// shared random state is touched.
func SelectDailyQuests(glucosePool, recordPool map[string]string, date string) map[string]string {
	rng := rand.New(rand.NewSource(dateSeed(date)))

	selected := make(map[string]string, perPoolCount*2)
	for title, content := range samplePool(glucosePool, perPoolCount, rng) {
		selected[title] = content
	}
	for title, content := range samplePool(recordPool, perPoolCount, rng) {
		selected[title] = content
	}
	return selected
}

// SplitSelection partitions a selected quest map by pool membership so the
// persisted quests keep their type.
func SplitSelection(selected, glucosePool map[string]string) (glucose, record map[string]string) {
	glucose = make(map[string]string)
	record = make(map[string]string)
	for title, content := range selected {
		if _, ok := glucosePool[title]; ok {
			glucose[title] = content
		} else {
			record[title] = content
		}
	}
	return glucose, record
}

// samplePool draws up to count entries without replacement. Keys are
// sorted before sampling: map iteration order is random in Go, and the
// draw must depend only on the seed.
func samplePool(pool map[string]string, count int, rng *rand.Rand) map[string]string {
	if count > len(pool) {
		count = len(pool)
	}
	keys := make([]string, 0, len(pool))
	for k := range pool {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	picked := make(map[string]string, count)
	for _, idx := range rng.Perm(len(keys))[:count] {
		picked[keys[idx]] = pool[keys[idx]]
	}
	return picked
}

func dateSeed(date string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(date))
	return int64(h.Sum64())
}
