// internal/question/pool.go
package question

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ErrInsufficientPool is returned when GeneratePairs cannot collect enough
// distinct items from the pool within its attempt budget.
var ErrInsufficientPool = errors.New("not enough distinct questions in pool")

// Rarity tiers. Difficulty 1/2/3 maps to common/rare/legendary; anything
// outside that range is treated as common.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityLegendary = "legendary"
)

// Item is one matchable question: a numeric table id and its name. The id is
// never revealed in timed-round question payloads.
type Item struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Difficulty int    `json:"difficulty"`
	Category   string `json:"category,omitempty"`
}

// Rarity returns the tier for this item's difficulty.
func (it Item) Rarity() string {
	switch it.Difficulty {
	case 2:
		return RarityRare
	case 3:
		return RarityLegendary
	default:
		return RarityCommon
	}
}

//go:embed tables.json
var defaultTables []byte

// Pool supplies weighted-random items and deduplicated item sets to seed a
// round. A Pool is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	items   []Item
	weights map[string]int
	rng     *rand.Rand
}

// NewPool builds a pool over the given items. weights holds the per-rarity
// draw weights (common/rare/legendary); missing entries count as zero.
func NewPool(items []Item, weights map[string]int) *Pool {
	return &Pool{
		items:   items,
		weights: weights,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// DefaultPool loads the embedded table set.
func DefaultPool(weights map[string]int) (*Pool, error) {
	var items []Item
	if err := json.Unmarshal(defaultTables, &items); err != nil {
		return nil, fmt.Errorf("decoding embedded tables: %w", err)
	}
	return NewPool(items, weights), nil
}

// Seed re-seeds the pool's random source. Tests use this for determinism.
func (p *Pool) Seed(seed int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng = rand.New(rand.NewSource(seed))
}

// Size reports the number of items in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Draw picks a rarity tier by weighted random draw, then uniformly samples an
// item of that tier. If no item matches the tier it falls back to sampling
// the whole pool. An empty pool yields the zero Item.
func (p *Pool) Draw() Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drawLocked()
}

func (p *Pool) drawLocked() Item {
	if len(p.items) == 0 {
		return Item{}
	}
	rarity := p.pickRarity()
	matching := make([]Item, 0, len(p.items))
	for _, it := range p.items {
		if it.Rarity() == rarity {
			matching = append(matching, it)
		}
	}
	source := matching
	if len(source) == 0 {
		source = p.items
	}
	return source[p.rng.Intn(len(source))]
}

func (p *Pool) pickRarity() string {
	total := 0
	for _, w := range p.weights {
		total += w
	}
	if total <= 0 {
		return RarityCommon
	}
	r := p.rng.Intn(total)
	for _, rarity := range []string{RarityCommon, RarityRare, RarityLegendary} {
		w := p.weights[rarity]
		if r < w {
			return rarity
		}
		r -= w
	}
	return RarityCommon
}

// GeneratePairs samples the pool until n distinct items are collected. The
// attempt budget caps at 64*n so an undersized pool fails fast instead of
// spinning.
func (p *Pool) GeneratePairs(n int) ([]Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 {
		return nil, fmt.Errorf("%w: wanted %d, pool is empty", ErrInsufficientPool, n)
	}

	seen := make(map[int]bool, n)
	pairs := make([]Item, 0, n)
	for attempts := 0; len(pairs) < n; attempts++ {
		if attempts >= 64*n {
			return nil, fmt.Errorf("%w: wanted %d, pool yielded %d distinct", ErrInsufficientPool, n, len(pairs))
		}
		it := p.drawLocked()
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		pairs = append(pairs, it)
	}
	return pairs, nil
}
