// internal/game/score.go
package game

import (
	"sort"
)

// Scorer applies the scoring rules to a player record. It carries only
// configured constants and keeps no state of its own; callers hold the room
// lock while mutating players.
type Scorer struct {
	Points       map[string]int
	StreakBonus  int
	WrongPenalty int
	MatchPoints  int
	MatchPenalty int
}

// NewScorer builds a Scorer from the configured settings.
func NewScorer(s Settings) Scorer {
	return Scorer{
		Points:       s.Points,
		StreakBonus:  s.StreakBonus,
		WrongPenalty: s.WrongPenalty,
		MatchPoints:  s.MatchPoints,
		MatchPenalty: s.MatchPenalty,
	}
}

// CorrectAnswer credits a correct timed-round answer. The gain depends on the
// question's rarity tier, plus the streak bonus when a streak is running.
func (sc Scorer) CorrectAnswer(p *Player, rarity string) {
	gain, ok := sc.Points[rarity]
	if !ok {
		gain = 10
	}
	if p.Streak > 0 {
		gain += sc.StreakBonus
	}
	p.Score += gain
	p.Streak++
}

// WrongAnswer applies the wrong-answer penalty and breaks the streak.
func (sc Scorer) WrongAnswer(p *Player) {
	p.Score += sc.WrongPenalty
	p.Streak = 0
}

// MatchCorrect credits a successful pair match: flat base points, the same
// streak-bonus rule as timed rounds, and the match counter.
func (sc Scorer) MatchCorrect(p *Player) {
	gain := sc.MatchPoints
	if p.Streak > 0 {
		gain += sc.StreakBonus
	}
	p.Score += gain
	p.Streak++
	p.Matches++
}

// MatchWrong applies the mismatch penalty, breaks the streak and counts the
// miss.
func (sc Scorer) MatchWrong(p *Player) {
	p.Score += sc.MatchPenalty
	p.Streak = 0
	p.Wrong++
}

// Leaderboard orders players by matches descending, then score descending.
// The sort is stable so ties preserve join order and the output is a pure
// function of its input.
func Leaderboard(players []*Player) []*Player {
	out := make([]*Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Matches != out[j].Matches {
			return out[i].Matches > out[j].Matches
		}
		return out[i].Score > out[j].Score
	})
	return out
}

// Podium returns the top three players by score descending, ties preserving
// join order.
func Podium(players []*Player) []*Player {
	out := make([]*Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
