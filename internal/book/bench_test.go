package book

import (
	"fmt"
	"testing"

	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

func BenchmarkBook_SubmitResting(b *testing.B) {
	bk := NewBook("AAPL")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		price := 150.00 - float64(i%100)*0.01
		bk.SubmitOrder(limitOrder(fmt.Sprintf("o%d", i), models.Buy, price, 10))
	}
}

func BenchmarkBook_SubmitMatching(b *testing.B) {
	bk := NewBook("AAPL")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bk.SubmitOrder(limitOrder(fmt.Sprintf("s%d", i), models.Sell, 150.00, 10))
		bk.SubmitOrder(limitOrder(fmt.Sprintf("b%d", i), models.Buy, 150.00, 10))
	}
}

func BenchmarkBook_Snapshot(b *testing.B) {
	bk := NewBook("AAPL")
	for i := 0; i < 50; i++ {
		bk.SubmitOrder(limitOrder(fmt.Sprintf("bid%d", i), models.Buy, 149.00-float64(i)*0.01, 10))
		bk.SubmitOrder(limitOrder(fmt.Sprintf("ask%d", i), models.Sell, 151.00+float64(i)*0.01, 10))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bk.Snapshot()
	}
}

func BenchmarkBook_ConcurrentSnapshot(b *testing.B) {
	bk := NewBook("AAPL")
	for i := 0; i < 50; i++ {
		bk.SubmitOrder(limitOrder(fmt.Sprintf("bid%d", i), models.Buy, 149.00-float64(i)*0.01, 10))
	}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			bk.Snapshot()
		}
	})
}
