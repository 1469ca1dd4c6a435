package match

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Defaults for Find.
const (
	DefaultMinScore = 30
	DefaultLimit    = 10
)

// Result is one scored candidate counterpart for a target report.
type Result struct {
	Item       model.Item `json:"item"`
	Score      int        `json:"score"`
	Confidence string     `json:"confidence"`
}

// Find searches unclaimed reports of the opposite type for candidates matching
// the target, scores each pair role-aware, keeps those at or above minScore,
// and returns them best first, at most limit results. Zero or negative
// minScore/limit select the defaults. Pure query-and-rank, no side effects.
func Find(ctx context.Context, db *sql.DB, target *model.Item, minScore, limit int) ([]Result, error) {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	counterType := model.ItemTypeLost
	if target.Type == model.ItemTypeLost {
		counterType = model.ItemTypeFound
	}

	// Only items still in the unclaimed pool are candidates; anything already
	// claimed, matched or returned is out.
	candidates, err := store.SearchItems(ctx, db, store.ItemFilter{
		Type:   counterType,
		Status: model.ItemStatusUnclaimed,
	})
	if err != nil {
		return nil, fmt.Errorf("querying match candidates: %w", err)
	}

	var results []Result
	for i := range candidates {
		cand := &candidates[i]

		var s int
		if target.Type == model.ItemTypeFound {
			s = Score(cand, target)
		} else {
			s = Score(target, cand)
		}
		if s < minScore {
			continue
		}

		results = append(results, Result{
			Item:       candidates[i],
			Score:      s,
			Confidence: Confidence(s),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
