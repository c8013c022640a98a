package scoring

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/dnldd/swing/candidate"
	"github.com/dnldd/swing/shared"
)

// Ranking represents the ordered candidates of a generation and the one picked as best.
type Ranking struct {
	Best   *candidate.Candidate
	Ranked []candidate.Candidate
	Reason string
}

// RankScore computes the ranking score of the provided candidate.
func (cfg *Config) RankScore(c *candidate.Candidate) float64 {
	distance := math.Min(c.Score.DistancePct, cfg.RankMaxDistancePct)
	total := cfg.RankRRWeight*c.Score.RR + cfg.RankTrendWeight*c.Score.TrendAlign -
		cfg.RankDistanceWeight*distance + c.Score.ScanTypeBonus

	return shared.Round2(total)
}

// PickBestCandidate ranks the provided candidates using the default tunables.
func PickBestCandidate(res *candidate.Result) *Ranking {
	return pickBest(DefaultConfig(), res)
}

// PickBestCandidate ranks the provided candidates using the scorer's tunables.
func (s *Scorer) PickBestCandidate(res *candidate.Result) *Ranking {
	return pickBest(s.cfg.Rules, res)
}

// pickBest keeps candidates with a positive risk reward, prefers those meeting the preferred
// risk reward and orders them by descending rank score. Equal scores keep generation order.
func pickBest(cfg *Config, res *candidate.Result) *Ranking {
	ranking := &Ranking{Ranked: []candidate.Candidate{}}
	if res == nil || len(res.Candidates) == 0 {
		ranking.Reason = "no candidates generated"
		return ranking
	}

	type entry struct {
		candidate candidate.Candidate
		index     int
	}

	valid := make([]entry, 0, len(res.Candidates))
	preferred := make([]entry, 0, len(res.Candidates))
	for idx, c := range res.Candidates {
		if c.Skeleton.RiskReward <= 0 {
			continue
		}

		c.Score.Total = cfg.RankScore(&c)
		valid = append(valid, entry{candidate: c, index: idx})
		if c.Skeleton.RiskReward >= cfg.PreferredRR {
			preferred = append(preferred, entry{candidate: c, index: idx})
		}
	}

	if len(valid) == 0 {
		ranking.Reason = "no candidate with a positive risk reward"
		return ranking
	}

	pool := valid
	fallback := len(preferred) == 0
	if !fallback {
		pool = preferred
	}

	slices.SortFunc(pool, func(a, b entry) int {
		if n := cmp.Compare(b.candidate.Score.Total, a.candidate.Score.Total); n != 0 {
			return n
		}
		return cmp.Compare(a.index, b.index)
	})

	for _, e := range pool {
		ranking.Ranked = append(ranking.Ranked, e.candidate)
	}

	best := ranking.Ranked[0]
	ranking.Best = &best

	switch {
	case fallback:
		ranking.Reason = fmt.Sprintf("%s %s ranked first with score %.2f; no candidate reaches "+
			"%.1fx risk reward", best.ID, best.Name, best.Score.Total, cfg.PreferredRR)
	default:
		ranking.Reason = fmt.Sprintf("%s %s ranked first with score %.2f (rr %.2f, trend "+
			"alignment %.2f, entry %.2f%% away)", best.ID, best.Name, best.Score.Total,
			best.Score.RR, best.Score.TrendAlign, best.Score.DistancePct)
	}

	return ranking
}
