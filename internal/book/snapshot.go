package book

// PriceLevel is a read-only aggregate of one price level: displayed
// quantity and resting order count. Hidden iceberg size is not included
// in Quantity.
type PriceLevel struct {
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	OrderCount int     `json:"order_count"`
}

// Snapshot is a point-in-time copy of both ladders plus last-trade state.
// It is a value, not a live view; it never changes after being returned.
type Snapshot struct {
	Symbol       string       `json:"symbol"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
	LastPrice    float64      `json:"last_price"`
	LastQuantity int64        `json:"last_quantity"`
	Version      uint64       `json:"version"`
}

// Statistics is a point-in-time summary of the book: level counts,
// top-of-book prices and last-trade state.
type Statistics struct {
	Symbol       string  `json:"symbol"`
	BidLevels    int     `json:"bid_levels"`
	AskLevels    int     `json:"ask_levels"`
	BestBid      float64 `json:"best_bid"`
	BestAsk      float64 `json:"best_ask"`
	LastPrice    float64 `json:"last_price"`
	LastQuantity int64   `json:"last_quantity"`
}

// Spread returns best ask minus best bid.
func (s Statistics) Spread() float64 {
	return s.BestAsk - s.BestBid
}

// MidPrice returns the midpoint of the top-of-book prices.
func (s Statistics) MidPrice() float64 {
	return (s.BestBid + s.BestAsk) / 2.0
}
