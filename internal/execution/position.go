package execution

// Position is the running signed quantity and average cost for one (strategy, symbol) pair.
// AveragePrice is zero whenever Quantity is zero.
type Position struct {
	StrategyID   string
	Symbol       string
	Quantity     int64
	AveragePrice float64
}

// buy applies a buy of qty (> 0) at price.
func (p *Position) buy(qty int64, price float64) {
	if p.Quantity < 0 {
		if qty >= -p.Quantity {
			// covers the whole short; any remainder opens a long at the fill price
			p.Quantity += qty
			if p.Quantity > 0 {
				p.AveragePrice = price
			} else {
				p.AveragePrice = 0
			}
			return
		}
		// partial cover keeps the short basis
		p.Quantity += qty
		return
	}

	cost := p.AveragePrice*float64(p.Quantity) + price*float64(qty)
	p.Quantity += qty
	if p.Quantity > 0 {
		p.AveragePrice = cost / float64(p.Quantity)
	} else {
		p.AveragePrice = 0
	}
}

// sell applies a sell of qty (> 0) at price and returns the realized PnL.
func (p *Position) sell(qty int64, price float64) float64 {
	if p.Quantity > 0 {
		closeQty := min(qty, p.Quantity)
		realized := (price - p.AveragePrice) * float64(closeQty)
		p.Quantity -= qty
		switch {
		case p.Quantity < 0:
			p.AveragePrice = price
		case p.Quantity == 0:
			p.AveragePrice = 0
		}
		return realized
	}

	value := absf(p.AveragePrice*float64(p.Quantity)) + price*float64(qty)
	p.Quantity -= qty
	if p.Quantity != 0 {
		p.AveragePrice = value / absf(float64(p.Quantity))
	} else {
		p.AveragePrice = 0
	}
	return 0
}

// UnrealizedPnL marks the position at mark. The signed quantity makes it correct for shorts.
func (p Position) UnrealizedPnL(mark float64) float64 {
	if p.Quantity == 0 {
		return 0
	}
	return (mark - p.AveragePrice) * float64(p.Quantity)
}

// Flat reports whether the position holds no quantity.
func (p Position) Flat() bool { return p.Quantity == 0 }

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
