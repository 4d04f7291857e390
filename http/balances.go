package http

import (
	"sort"

	"go-trade-game"
	"go-trade-game/session"
)

// sorted orders balances by currency code
func sorted(b game.Balances) []session.BalanceView {
	out := make([]session.BalanceView, 0, len(b))
	for c, amount := range b {
		out = append(out, session.BalanceView{Currency: c, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
