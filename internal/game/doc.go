// Package game implements the blackjack round engine.
//
// The main type is Game, which owns the single authoritative round state: both
// hands, the used-card set, the balance and the current bet. All mutation
// happens through its commands; readers get value snapshots from State.
//
// # Basic Usage
//
//	g := game.New(game.WithLogger(logger))
//	_ = g.PlaceBet(100)
//	_ = g.Deal()
//	if g.State().Phase == game.PhasePlayerTurn {
//	    _ = g.Stand()
//	}
//	fmt.Println(g.State().Outcome)
//
// # Deterministic Testing
//
// Inject a seeded or stacked drawer to control every card:
//
//	g := game.New(game.WithSeed(42))
//	g := game.New(game.WithDrawer(shoe.NewStacked(deck.MustParseCodes("AS KH 9D 7C")...)))
//
// # Architecture
//
// Game delegates to small pure pieces:
//   - shoe.Drawer: picks a fresh card given the used set
//   - evaluator.Evaluate: scores hands (hard, soft, optimal)
//   - PlayDealer: runs the dealer's draw-until-17 loop
//   - Settle and Payout: decide the outcome and the balance change
//
// Dealer pacing is an optional step delay measured on an injectable
// quartz.Clock. A zero delay plays the dealer turn straight through and yields
// identical results.
package game
