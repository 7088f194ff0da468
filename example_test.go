package biclique_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/biclique"
	"github.com/hupe1980/biclique/archive"
	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/cipher/toy"
	"github.com/hupe1980/biclique/compare"
	"github.com/hupe1980/biclique/rating"
	"github.com/hupe1980/biclique/resultstore"
)

func newExampleSearcher(opts ...biclique.Option) *biclique.Searcher {
	c, err := toy.New(toy.DefaultConfig)
	if err != nil {
		log.Fatal(err)
	}
	b, err := toy.NewBuilder(toy.DefaultConfig)
	if err != nil {
		log.Fatal(err)
	}

	s, err := biclique.New(c, b, append([]biclique.Option{
		biclique.WithDimension(1),
		biclique.WithThreads(2),
		biclique.WithMemoryLimit(1 << 20),
	}, opts...)...)
	if err != nil {
		log.Fatal(err)
	}
	return s
}

// Example_exhaustive searches the two-round 8-bit toy cipher for every
// maximal biclique of dimension 1.
func Example_exhaustive() {
	s := newExampleSearcher()

	res, err := s.Search(context.Background(), cipher.Window{FromRound: 1, ToRound: 2})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s %s: %d bicliques, max score %d\n", res.CipherName, res.Window, len(res.Bicliques), res.MaxScore)
	// Output: toy8 [1,2]: 32 bicliques, max score 4
}

// Example_stopAfterFirst ends the search at the first independent pair.
func Example_stopAfterFirst() {
	s := newExampleSearcher(
		biclique.WithStopAfterFirst(true),
		biclique.WithComparator(compare.NewActiveComponents(compare.Nibble)),
		biclique.WithRater(rating.Default{}),
	)

	res, err := s.Search(context.Background(), cipher.Window{FromRound: 1, ToRound: 2})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(res.Bicliques), res.StoppedEarly)
	// Output: 1 true
}

// Example_archive stores a search result and reads it back.
func Example_archive() {
	ctx := context.Background()
	s := newExampleSearcher()

	results, err := s.SearchWindows(ctx, cipher.Windows(2, 2))
	if err != nil {
		log.Fatal(err)
	}

	store := resultstore.NewMemoryStore()
	rec := &archive.Record{RunID: "example", Results: results}
	if _, err := resultstore.SaveRecord(ctx, store, resultstore.ArchiveName(rec.RunID), rec); err != nil {
		log.Fatal(err)
	}

	loaded, h, err := resultstore.LoadRecord(ctx, store, "runs/example.bcq")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(h.Codec, h.Compression, loaded.MaxScore())
	// Output: json zstd 4
}
