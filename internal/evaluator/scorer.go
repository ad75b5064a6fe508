// Package evaluator scores Caribbean Poker hands.
//
// Hands are compared on high cards only: a hand's score is its card values
// (2..14) sorted from highest to lowest, and two scores compare
// lexicographically. Pairs, straights and flushes are not ranked as separate
// categories; this is the table's house rule, not an omission.
package evaluator

import (
	"sort"

	"github.com/lox/caribbeanpoker/internal/deck"
)

// Score is a rank vector sorted in descending order.
type Score []int

// ScoreHand converts a card set into its rank vector.
func ScoreHand(cards []deck.Card) Score {
	score := make(Score, len(cards))
	for i, c := range cards {
		score[i] = c.Value()
	}
	sort.Sort(sort.Reverse(sort.IntSlice(score)))
	return score
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 on a tie. Missing
// slots in the shorter vector count as 0.
func Compare(a, b Score) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		av, bv := at(a, i), at(b, i)
		switch {
		case av > bv:
			return 1
		case av < bv:
			return -1
		}
	}
	return 0
}

// CompareHands scores and compares two card sets.
func CompareHands(a, b []deck.Card) int {
	return Compare(ScoreHand(a), ScoreHand(b))
}

func at(s Score, i int) int {
	if i < len(s) {
		return s[i]
	}
	return 0
}
