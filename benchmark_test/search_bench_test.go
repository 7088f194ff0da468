package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/biclique"
	"github.com/hupe1980/biclique/bitvector"
	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/cipher/toy"
	"github.com/hupe1980/biclique/compare"
	"github.com/hupe1980/biclique/differential"
	"github.com/hupe1980/biclique/enumerate"
	"github.com/hupe1980/biclique/testutil"
)

func newSearcher(b *testing.B, cfg toy.Config, opts ...biclique.Option) *biclique.Searcher {
	c, err := toy.New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	builder, err := toy.NewBuilder(cfg)
	if err != nil {
		b.Fatal(err)
	}
	s, err := biclique.New(c, builder, append([]biclique.Option{biclique.WithMemoryLimit(64 << 20)}, opts...)...)
	if err != nil {
		b.Fatal(err)
	}
	return s
}

func BenchmarkSearch_Toy16(b *testing.B) {
	cfg := toy.Config{Nibbles: 4, Rounds: 3}
	w := cipher.Window{FromRound: 1, ToRound: 2}

	for _, threads := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			s := newSearcher(b, cfg, biclique.WithThreads(threads), biclique.WithDimension(2))
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := s.Search(context.Background(), w); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSearch_IterationSplitting(b *testing.B) {
	cfg := toy.Config{Nibbles: 4, Rounds: 2}
	w := cipher.Window{FromRound: 1, ToRound: 2}

	for _, limit := range []int64{4 << 10, 64 << 10, 1 << 20} {
		b.Run(fmt.Sprintf("limit=%d", limit), func(b *testing.B) {
			s := newSearcher(b, cfg, biclique.WithThreads(4), biclique.WithDimension(2), biclique.WithMemoryLimit(limit))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := s.Search(context.Background(), w); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkWeightBounded(b *testing.B) {
	for _, dim := range []int{1, 2, 3} {
		b.Run(fmt.Sprintf("numBits=64/dim=%d", dim), func(b *testing.B) {
			e := enumerate.NewWeightBounded()
			n, err := e.Init(dim, 64)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				e.Reset()
				for j := uint64(0); j < n; j++ {
					if _, ok := e.Next(); !ok {
						b.Fatal("enumeration ended early")
					}
				}
			}
		})
	}
}

func BenchmarkShareActiveNonLinearOperations(b *testing.B) {
	cfg := toy.Config{Nibbles: 16, Rounds: 6}
	builder, err := toy.NewBuilder(cfg)
	if err != nil {
		b.Fatal(err)
	}

	rng := testutil.NewRNG(42)
	req := func(pivot int) differential.Request {
		return differential.Request{
			FromRound:     1,
			ToRound:       cfg.Rounds,
			KeyDifference: bitvector.FromBytes(rng.SparseBytes(cfg.Nibbles/2, 1)),
			PivotRound:    pivot,
		}
	}

	ctx := context.Background()
	fwd, err := builder.ForwardDifferential(ctx, req(0))
	if err != nil {
		b.Fatal(err)
	}
	bwd, err := builder.BackwardDifferential(ctx, req(cfg.Rounds))
	if err != nil {
		b.Fatal(err)
	}

	for _, g := range []compare.Granularity{compare.Bit, compare.Nibble, compare.Byte} {
		b.Run(g.String(), func(b *testing.B) {
			cmp := compare.NewActiveComponents(g)
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := cmp.ShareActiveNonLinearOperations(fwd, bwd); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
