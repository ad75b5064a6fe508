package game

import (
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/caribbeanpoker/internal/deck"
	"github.com/lox/caribbeanpoker/internal/evaluator"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/randutil"
	"github.com/lox/caribbeanpoker/internal/table"
)

const (
	DefaultMinBet       = 1
	DefaultMaxBet       = 100
	DefaultIntermission = 5 * time.Second

	// HandSize is the number of cards dealt to each player and the dealer.
	HandSize = 5
)

// Seating is the view of the table the engine needs: who is seated, in seat
// order, and whether the table is in play.
type Seating interface {
	Status() table.Status
	Seats() []table.Seat
	SeatedPlayers() []string
}

// Engine runs Caribbean Poker rounds for one table.
type Engine struct {
	seating      Seating
	pipeline     Pipeline
	minBet       int
	maxBet       int
	intermission time.Duration

	clock     quartz.Clock
	scheduler Scheduler
	seeds     randutil.Source
	logger    *log.Logger
	onChange  func()

	phase       Phase
	dealerSeed  int64
	deck        *deck.Deck
	dealerHand  []deck.Card
	playerHands map[string][]deck.Card
	bets        map[string]*BetState
	winners     []string
	lastAction  *LastAction
	nextRoundAt time.Time

	timer    Timer
	timerGen uint64
	disposed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for timestamps and, unless WithScheduler is
// also given, for timers.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithScheduler sets how phase timers are scheduled.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithSeedSource sets where dealer seeds come from.
func WithSeedSource(src randutil.Source) Option {
	return func(e *Engine) { e.seeds = src }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithOnChange registers a callback invoked after every timer driven
// transition, so the owner can broadcast the new state.
func WithOnChange(fn func()) Option {
	return func(e *Engine) { e.onChange = fn }
}

// WithPipeline replaces the phase timings.
func WithPipeline(p Pipeline) Option {
	return func(e *Engine) { e.pipeline = p }
}

// WithBetLimits sets the minimum and maximum wager.
func WithBetLimits(minBet, maxBet int) Option {
	return func(e *Engine) {
		e.minBet = minBet
		e.maxBet = maxBet
	}
}

// WithIntermission sets the pause between rounds.
func WithIntermission(d time.Duration) Option {
	return func(e *Engine) { e.intermission = d }
}

// NewEngine creates an engine in the waiting phase.
func NewEngine(seating Seating, opts ...Option) *Engine {
	e := &Engine{
		seating:      seating,
		pipeline:     DefaultPipeline(),
		minBet:       DefaultMinBet,
		maxBet:       DefaultMaxBet,
		intermission: DefaultIntermission,
		phase:        PhaseWaiting,
		playerHands:  make(map[string][]deck.Card),
		bets:         make(map[string]*BetState),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		e.clock = quartz.NewReal()
	}
	if e.scheduler == nil {
		e.scheduler = ClockScheduler{Clock: e.clock}
	}
	if e.seeds == nil {
		e.seeds = randutil.NewRandomSource()
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if e.minBet < 1 {
		e.minBet = DefaultMinBet
	}
	if e.maxBet < e.minBet {
		e.maxBet = max(e.minBet, DefaultMaxBet)
	}
	if e.intermission <= 0 {
		e.intermission = DefaultIntermission
	}
	return e
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// DealerSeed returns the seed of the current (or next) round's deck.
func (e *Engine) DealerSeed() int64 { return e.dealerSeed }

// MinBet returns the ante amount and smallest accepted wager.
func (e *Engine) MinBet() int { return e.minBet }

// MaxBet returns the largest accepted wager.
func (e *Engine) MaxBet() int { return e.maxBet }

// Winners returns the winners published at payout.
func (e *Engine) Winners() []string { return append([]string(nil), e.winners...) }

// Bet returns the bet state of playerID.
func (e *Engine) Bet(playerID string) (BetState, bool) {
	b, ok := e.bets[playerID]
	if !ok {
		return BetState{}, false
	}
	return *b, true
}

// Bets returns a copy of every tracked bet state.
func (e *Engine) Bets() map[string]BetState {
	out := make(map[string]BetState, len(e.bets))
	for id, b := range e.bets {
		out[id] = *b
	}
	return out
}

// Hand returns the unmasked cards dealt to playerID.
func (e *Engine) Hand(playerID string) []deck.Card {
	return append([]deck.Card(nil), e.playerHands[playerID]...)
}

// DealerHand returns the unmasked dealer cards.
func (e *Engine) DealerHand() []deck.Card {
	return append([]deck.Card(nil), e.dealerHand...)
}

// LastAction returns the most recent accepted action, if any.
func (e *Engine) LastAction() (LastAction, bool) {
	if e.lastAction == nil {
		return LastAction{}, false
	}
	return *e.lastAction, true
}

// NextRoundStartAt reports when the next round is due during an
// intermission.
func (e *Engine) NextRoundStartAt() (time.Time, bool) {
	return e.nextRoundAt, !e.nextRoundAt.IsZero()
}

// PotTotal sums ante and bet over every tracked bet state.
func (e *Engine) PotTotal() int {
	total := 0
	for _, b := range e.bets {
		total += b.Total()
	}
	return total
}

// HighestBet is the largest bet among players who have not folded.
func (e *Engine) HighestBet() int {
	highest := 0
	for _, b := range e.bets {
		if !b.HasFolded {
			highest = max(highest, b.Bet)
		}
	}
	return highest
}

// StartRound resets the round and begins ante with a fresh seed. Called when
// the host starts the table.
func (e *Engine) StartRound() {
	if e.disposed {
		return
	}
	e.Reset()
	e.dealerSeed = e.seeds.Seed()
	e.beginPhase(e.pipeline.Next(PhaseWaiting))
}

// Advance moves to the next phase immediately. Leaving the last phase resets
// the round and schedules the next one.
func (e *Engine) Advance() {
	if e.disposed {
		return
	}
	next := e.pipeline.Next(e.phase)
	if next == PhaseWaiting {
		e.Reset()
		e.scheduleNextRound()
		return
	}
	e.beginPhase(next)
}

// Reset cancels any pending timer and returns the round to waiting with no
// cards, bets, winners or seed.
func (e *Engine) Reset() {
	e.cancelTimer()
	e.phase = PhaseWaiting
	e.dealerSeed = 0
	e.deck = nil
	e.dealerHand = nil
	clear(e.playerHands)
	clear(e.bets)
	e.winners = nil
	e.lastAction = nil
	e.nextRoundAt = time.Time{}
}

// RemovePlayer forgets the bet state and hand of a player who left.
func (e *Engine) RemovePlayer(playerID string) {
	delete(e.bets, playerID)
	delete(e.playerHands, playerID)
}

// Dispose cancels timers and stops the engine from advancing again.
func (e *Engine) Dispose() {
	e.cancelTimer()
	e.disposed = true
}

// Act validates and applies a betting action for playerID. seatIndex, when
// given, names the seat the player claims to act from; otherwise the
// player's own seat is used. Rejections are *ActionError values.
func (e *Engine) Act(playerID string, seatIndex *int, action string, amount *float64) (Result, error) {
	if action == "" {
		return Result{}, reject(protocol.ReasonMissingAction)
	}
	if e.seating.Status() != table.StatusInProgress {
		return Result{}, reject(protocol.ReasonTableNotActive)
	}

	seats := e.seating.Seats()
	idx := table.SeatOf(seats, playerID)
	if seatIndex != nil {
		idx = *seatIndex
	}
	if idx < 0 || idx >= len(seats) {
		return Result{}, reject(protocol.ReasonInvalidSeat)
	}
	if playerID == "" || seats[idx].PlayerID != playerID {
		return Result{}, reject(protocol.ReasonNotInSeat)
	}
	if !e.pipeline.AllowsActions(e.phase) {
		return Result{}, reject(protocol.ReasonPhaseLocked)
	}

	act, known := ParseAction(action)
	amt := ClampAmount(amount, e.minBet, e.maxBet)
	highest := e.HighestBet()

	if !known {
		return Result{}, reject(protocol.ReasonUnknownAction)
	}
	if act == ActionCall && highest <= 0 {
		return Result{}, reject(protocol.ReasonNothingToCall)
	}
	if (act == ActionBet || act == ActionRaise || act == ActionInsurance) && amt <= 0 {
		return Result{}, reject(protocol.ReasonInvalidAmount)
	}

	b := e.ensureBet(playerID)
	switch act {
	case ActionFold:
		b.HasFolded = true
	case ActionBet:
		b.Bet = amt
	case ActionRaise:
		b.Bet = min(e.maxBet, b.Bet+amt)
	case ActionCall:
		b.HasFolded = false
		b.Bet = min(e.maxBet, max(b.Bet, highest))
	case ActionInsurance:
		b.Insurance = amt
	}

	e.lastAction = &LastAction{PlayerID: playerID, Action: act, Amount: amt}
	e.logger.Debug("Player action", "player", playerID, "action", act, "amount", amt, "pot", e.PotTotal())

	if act != ActionInsurance {
		e.maybeCompleteBetting()
	}
	return Result{Action: act, Amount: amt}, nil
}

func (e *Engine) ensureBet(playerID string) *BetState {
	b, ok := e.bets[playerID]
	if !ok {
		b = &BetState{}
		e.bets[playerID] = b
	}
	return b
}

func (e *Engine) beginPhase(phase Phase) {
	cfg, ok := e.pipeline.Lookup(phase)
	if !ok {
		e.logger.Warn("Unknown phase requested", "phase", phase)
		e.cancelTimer()
		e.phase = PhaseWaiting
		return
	}

	e.cancelTimer()
	e.nextRoundAt = time.Time{}
	e.phase = phase
	e.enterPhase(phase)
	e.logger.Debug("Phase started", "phase", phase, "seed", e.dealerSeed, "duration", cfg.Duration)

	if cfg.AutoAdvance {
		e.schedule(cfg.Duration, e.Advance)
	}
}

func (e *Engine) enterPhase(phase Phase) {
	switch phase {
	case PhaseAnte:
		e.prepareAnte()
	case PhaseDealPlayer:
		for _, id := range e.seating.SeatedPlayers() {
			e.ensureBet(id)
			e.playerHands[id] = e.deck.DrawN(HandSize)
		}
	case PhaseDealDealer:
		e.dealerHand = e.deck.DrawN(HandSize)
	case PhasePayout:
		e.winners = e.evaluateWinners()
		e.logger.Info("Round settled", "winners", e.winners, "pot", e.PotTotal(), "seed", e.dealerSeed)
	}
}

func (e *Engine) prepareAnte() {
	if e.dealerSeed == 0 {
		e.dealerSeed = e.seeds.Seed()
	}
	e.deck = deck.New(e.dealerSeed, e.seeds)
	e.dealerHand = nil
	clear(e.playerHands)
	e.lastAction = nil
	e.winners = nil

	seated := e.seating.SeatedPlayers()
	maps.DeleteFunc(e.bets, func(id string, _ *BetState) bool {
		return !slices.Contains(seated, id)
	})
	for _, id := range seated {
		b := e.ensureBet(id)
		*b = BetState{Ante: e.minBet}
	}
}

// evaluateWinners returns, in seat order, every non-folded player whose bet
// matches the highest bet and whose hand beats the dealer. With no such
// player the first seated, non-folded player wins.
func (e *Engine) evaluateWinners() []string {
	if len(e.dealerHand) == 0 {
		return nil
	}
	highest := e.HighestBet()
	seated := e.seating.SeatedPlayers()

	var winners []string
	for _, id := range seated {
		b, ok := e.bets[id]
		if !ok || b.HasFolded || b.Bet <= 0 || b.Bet < highest {
			continue
		}
		hand := e.playerHands[id]
		if len(hand) == 0 {
			continue
		}
		if evaluator.CompareHands(hand, e.dealerHand) > 0 {
			winners = append(winners, id)
		}
	}
	if len(winners) > 0 {
		return winners
	}

	for _, id := range seated {
		if b, ok := e.bets[id]; ok && !b.HasFolded {
			return []string{id}
		}
	}
	return nil
}

func (e *Engine) maybeCompleteBetting() {
	if e.phase != PhaseBetting {
		return
	}

	seated := e.seating.SeatedPlayers()
	if len(seated) == 0 {
		e.Advance()
		return
	}

	active := 0
	for _, id := range seated {
		if b, ok := e.bets[id]; ok && !b.HasFolded {
			active++
		}
	}
	if active <= 1 {
		e.Advance()
		return
	}

	target := max(e.minBet, e.HighestBet())
	for _, id := range seated {
		b, ok := e.bets[id]
		if !ok {
			return
		}
		if !b.HasFolded && b.Bet < target {
			return
		}
	}
	e.Advance()
}

func (e *Engine) scheduleNextRound() {
	if e.seating.Status() != table.StatusInProgress || len(e.seating.SeatedPlayers()) == 0 {
		return
	}

	e.dealerSeed = e.seeds.Seed()
	e.nextRoundAt = e.clock.Now().Add(e.intermission)
	e.logger.Debug("Next round scheduled", "at", e.nextRoundAt, "seed", e.dealerSeed)

	e.schedule(e.intermission, func() {
		if e.seating.Status() != table.StatusInProgress || len(e.seating.SeatedPlayers()) == 0 {
			return
		}
		e.beginPhase(e.pipeline.Next(PhaseWaiting))
	})
}

// schedule replaces the pending timer. The generation check drops callbacks
// from timers that were replaced after they fired but before they ran.
func (e *Engine) schedule(d time.Duration, fn func()) {
	e.cancelTimer()
	gen := e.timerGen
	e.timer = e.scheduler.AfterFunc(d, func() {
		if e.disposed || gen != e.timerGen {
			return
		}
		e.timer = nil
		fn()
		if e.onChange != nil {
			e.onChange()
		}
	})
}

func (e *Engine) cancelTimer() {
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
