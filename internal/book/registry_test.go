package book

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistry_LazyCreate(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Lookup("AAPL"); ok {
		t.Fatal("lookup must not create a book")
	}
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Count())
	}

	b := r.Get("AAPL")
	if b == nil {
		t.Fatal("Get must create the book")
	}
	if b.Symbol() != "AAPL" {
		t.Errorf("expected symbol AAPL, got %s", b.Symbol())
	}
	if again := r.Get("AAPL"); again != b {
		t.Error("Get must return the same book for the same symbol")
	}
}

func TestRegistry_ConcurrentGetConverges(t *testing.T) {
	r := NewRegistry()

	const goroutines = 32
	books := make([]*Book, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			books[i] = r.Get("GOOGL")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if books[i] != books[0] {
			t.Fatal("concurrent Get must converge on a single book instance")
		}
	}
	if r.Count() != 1 {
		t.Errorf("expected 1 book, got %d", r.Count())
	}
}

func TestRegistry_Symbols(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		r.Get(fmt.Sprintf("SYM%d", i))
	}

	symbols := r.Symbols()
	if len(symbols) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(symbols))
	}
	seen := make(map[string]bool)
	for _, s := range symbols {
		seen[s] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[fmt.Sprintf("SYM%d", i)] {
			t.Errorf("missing symbol SYM%d", i)
		}
	}
}
