// Package biclique searches iterated block ciphers for bicliques: pairs of a
// forward (delta) and a backward (nabla) differential trail over the same
// round window that share no active non-linear component.
//
// # Quick Start
//
//	cfg := toy.DefaultConfig
//	c, _ := toy.New(cfg)
//	b, _ := toy.NewBuilder(cfg)
//
//	s, _ := biclique.New(c, b,
//	    biclique.WithDimension(1),
//	    biclique.WithThreads(4),
//	    biclique.WithLogger(biclique.NewTextLogger(slog.LevelInfo)),
//	)
//
//	res, err := s.Search(ctx, cipher.Window{FromRound: 1, ToRound: 2})
//	if err != nil {
//	    return err
//	}
//	for _, bc := range res.Bicliques {
//	    fmt.Println(bc, res.MaxScore)
//	}
//
// # Search
//
// Every non-zero key difference of Hamming weight up to the dimension is a
// candidate. A search over one window runs in iterations:
//
//  1. Planning: the number of forward trails that fit into 7/8 of the memory
//     headroom decides how many candidates one iteration covers.
//  2. Delta phase: the workers build one forward trail per candidate of the
//     iteration.
//  3. Nabla phase: the workers replay the whole candidate sequence, build one
//     backward trail per candidate and test it against every forward trail of
//     the iteration. Independent pairs are scored and offered to the
//     survivor set.
//
// The survivor set keeps every biclique with the highest score seen. Which of
// several equally scored bicliques are found first depends on scheduling.
//
// # Failure Model
//
// Invalid configuration and an exhausted memory budget fail the search before
// any work starts. A worker whose builder or comparator fails (or panics) stops
// early; its error is logged, counted and joined into Result.WorkerErrors.
// Cancelling the context returns the partial result with ctx.Err().
package biclique
