package book

import (
	"sync"
)

// Registry maps symbol -> Book. Books are created lazily on first
// reference and never removed for the lifetime of the engine.
//
// THREAD SAFETY:
//   - The map itself is guarded by mu; each book carries its own lock,
//     so operations on different symbols proceed in parallel.
type Registry struct {
	books map[string]*Book
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		books: make(map[string]*Book),
	}
}

// Get returns the book for symbol, creating one if needed.
func (r *Registry) Get(symbol string) *Book {
	r.mu.RLock()
	b, exists := r.books[symbol]
	r.mu.RUnlock()

	if exists {
		return b
	}

	// Create under the write lock, re-checking after the upgrade so two
	// racing creators converge on a single book.
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, exists = r.books[symbol]; exists {
		return b
	}

	b = NewBook(symbol)
	r.books[symbol] = b
	return b
}

// Lookup returns the book for symbol without creating one.
func (r *Registry) Lookup(symbol string) (*Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, exists := r.books[symbol]
	return b, exists
}

// Symbols lists every symbol with a book.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	symbols := make([]string, 0, len(r.books))
	for symbol := range r.books {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Count returns the number of books.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books)
}
