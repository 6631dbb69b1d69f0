package cache

import "time"

// Entry is one cached effective-weight computation. An entry is reused
// until the weight engine's recompute tolerance runs out; the decay
// curves change slowly relative to that tolerance, so the staleness is
// bounded and harmless.
type Entry struct {
	VoteID     string    `json:"vote_id" msgpack:"vote_id"`
	Weight     float64   `json:"weight" msgpack:"weight"`
	ComputedAt time.Time `json:"computed_at" msgpack:"computed_at"`
}

type Adapter interface {
	Get(key string) (*Entry, bool)
	Set(key string, entry *Entry)
	Remove(key string)
}
