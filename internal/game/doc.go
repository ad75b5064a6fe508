// Package game implements the Caribbean Poker round engine.
//
// The main type is Engine, which walks a round through a fixed phase
// pipeline:
//
//	waiting → ante → deal_player → deal_dealer → betting → reveal → payout → waiting
//
// Every phase has a duration after which a timer advances the round on its
// own. Betting can also finish early once every seated player has folded or
// matched the highest bet. After payout the engine resets and, while the
// table is still in progress, schedules the next round after an
// intermission.
//
// # Basic Usage
//
//	e := game.NewEngine(ledger,
//	    game.WithClock(clock),
//	    game.WithScheduler(game.ClockScheduler{Clock: clock, Post: room.Post}),
//	    game.WithOnChange(room.broadcastPokerState),
//	)
//	e.StartRound()
//	res, err := e.Act(playerID, nil, "bet", &amount)
//
// # Timers
//
// Timers are created through a Scheduler and cancelled on every transition,
// reset and dispose. A callback that still fires after its timer was
// replaced is ignored, so a stale timer never moves the round.
//
// Engine is not safe for concurrent use. The owning room must serialise
// every call, including timer callbacks, which is what ClockScheduler.Post
// is for.
package game
