package portfolio

import "sort"

// ReplayTrades builds a Position for one instrument by replaying its trades
// in chronological order through a FIFO lot queue.
//
// Buys append a lot whose cost includes fees. Sells consume lots from the
// front; cost leaves each lot in proportion to the shares taken, so a
// partially consumed lot keeps its cost per share. Realized profit is
// proceeds (net of fees) minus the matched cost.
//
// A sell larger than the open quantity matches only the available shares;
// fees still reduce proceeds in full. Trades on the same date keep their
// input order.
func ReplayTrades(instrument Instrument, trades []Trade) Position {
	ordered := make([]Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TradeDate < ordered[j].TradeDate
	})

	pos := Position{Instrument: instrument}

	for _, trade := range ordered {
		if trade.Quantity > 0 {
			cost := trade.Quantity*trade.Price + trade.Fees
			pos.Lots = append(pos.Lots, Lot{Quantity: trade.Quantity, TotalCost: cost})
			pos.Invested += cost
			continue
		}
		if trade.Quantity == 0 {
			continue
		}

		toSell := -trade.Quantity
		matchedShares := 0.0
		matchedCost := 0.0

		for toSell > 0 && len(pos.Lots) > 0 {
			lot := &pos.Lots[0]
			take := toSell
			if lot.Quantity < take {
				take = lot.Quantity
			}

			costPerShare := lot.TotalCost / lot.Quantity
			lot.Quantity -= take
			lot.TotalCost -= take * costPerShare
			matchedShares += take
			matchedCost += take * costPerShare
			toSell -= take

			if lot.Quantity <= 0 {
				pos.Lots = pos.Lots[1:]
			}
		}

		proceeds := matchedShares*trade.Price - trade.Fees
		pos.RealizedPnL += proceeds - matchedCost
	}

	for _, lot := range pos.Lots {
		pos.Quantity += lot.Quantity
		pos.CostBasis += lot.TotalCost
	}
	if pos.Quantity > 0 {
		pos.AvgCost = pos.CostBasis / pos.Quantity
	}

	return pos
}
