package session

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-trade-game"
	"go-trade-game/account"
	"go-trade-game/rates"
	"go-trade-game/settlement"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(Seed{
		Reference: "KRW",
		Rates: rates.Loaded{
			Rates:  game.Rates{"KRW": 1, "USD": 1400, "JPY": 9, "CNY": 195},
			Origin: rates.OriginDefault,
		},
		Accounts: []account.Seed{
			{Name: "Korea", Resources: []string{"rice"}, Balances: game.Balances{"KRW": 50000}},
			{Name: "USA", Resources: []string{"wheat", "cocoa"}, Balances: game.Balances{"USD": 30}},
		},
		Objective: []string{"cocoa", "sugar"},
	}, log.NewNopLogger())
	require.NoError(t, err)
	return s
}

func TestNew_RejectsUnknownSeedCurrency(t *testing.T) {
	_, err := New(Seed{
		Reference: "KRW",
		Rates:     rates.Loaded{Rates: game.Rates{"USD": 1400}},
		Accounts:  []account.Seed{{Name: "EU", Balances: game.Balances{"EUR": 10}}},
	}, log.NewNopLogger())
	assert.ErrorIs(t, err, game.ErrUnknownCurrency)
}

func TestSession_Rates(t *testing.T) {
	before := time.Now()
	board := newSession(t).Rates()

	assert.Equal(t, game.Currency("KRW"), board.Reference)
	assert.False(t, board.OverrideActive)
	assert.Equal(t, rates.OriginDefault, board.Origin)
	assert.Equal(t, []RateView{
		{Currency: "CNY", Rate: 195, Original: 195},
		{Currency: "JPY", Rate: 9, Original: 9},
		{Currency: "USD", Rate: 1400, Original: 1400},
	}, board.Rates)
	assert.False(t, board.StartedAt.Before(before))
	assert.False(t, board.StartedAt.After(time.Now()))
}

func TestSession_OverrideWorkflow(t *testing.T) {
	s := newSession(t)

	err := s.OverrideRate("USD", 2000)
	assert.ErrorIs(t, err, game.ErrOverrideInactive)

	assert.True(t, s.SetOverride(true))
	assert.False(t, s.SetOverride(true), "turning on twice is a no-op")

	require.NoError(t, s.OverrideRate("USD", 2000))
	require.NoError(t, s.OverrideRate("JPY", 10))
	assert.ErrorIs(t, s.OverrideRate("KRW", 2), game.ErrReferenceCurrency)

	ex, err := s.Convert(context.Background(), 1, "USD", "KRW")
	require.NoError(t, err)
	assert.Equal(t, game.Amount(2000), ex.Amount)

	board := s.Rates()
	assert.True(t, board.OverrideActive)
	assert.Equal(t, RateView{Currency: "USD", Rate: 2000, Original: 1400}, board.Rates[2])

	assert.True(t, s.SetOverride(false))
	assert.False(t, s.SetOverride(false), "turning off twice is a no-op")

	for _, r := range s.Rates().Rates {
		assert.Equal(t, r.Original, r.Rate, r.Currency)
	}
	assert.ErrorIs(t, s.OverrideRate("USD", 2000), game.ErrOverrideInactive)
}

func TestSession_SettleAndExport(t *testing.T) {
	s := newSession(t)

	_, err := s.Settle(context.Background(), settlement.Trade{Seller: "USA", Buyer: "Korea", Item: "cocoa", Quantity: 3, Price: 10, Currency: "USD"})
	require.NoError(t, err)
	_, err = s.Settle(context.Background(), settlement.Trade{Seller: "USA", Buyer: "USA", Item: "cocoa", Quantity: 3, Price: 10, Currency: "USD"})
	assert.ErrorIs(t, err, game.ErrSameParticipant)

	records := s.Transactions()
	require.Len(t, records, 1)
	assert.Equal(t, "cocoa", records[0].Item)

	var buf bytes.Buffer
	require.NoError(t, s.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], ",USA,Korea,cocoa,3,10.00,USD"))
}

func TestSession_Accounts(t *testing.T) {
	s := newSession(t)
	_, err := s.Settle(context.Background(), settlement.Trade{Seller: "USA", Buyer: "Korea", Item: "cocoa", Quantity: 2, Price: 10, Currency: "USD"})
	require.NoError(t, err)
	_, err = s.Settle(context.Background(), settlement.Trade{Seller: "Korea", Buyer: "USA", Item: "rice", Quantity: 1, Price: 100, Currency: "JPY"})
	require.NoError(t, err)

	views := s.Accounts()
	require.Len(t, views, 2)

	korea := views[0]
	assert.Equal(t, "Korea", korea.Name)
	assert.Equal(t, []string{"rice", "cocoa ×2"}, korea.Resources)
	assert.Equal(t, []string{"sugar"}, korea.Missing)
	assert.Equal(t, []BalanceView{{Currency: "KRW", Amount: 36000}, {Currency: "JPY", Amount: 100}}, korea.Balances)

	usa := views[1]
	assert.Equal(t, []string{"sugar"}, usa.Missing)
	assert.Equal(t, []BalanceView{{Currency: "KRW", Amount: -900}, {Currency: "USD", Amount: 40}}, usa.Balances)
}

func TestMissing(t *testing.T) {
	assert.Equal(t, []string{}, missing([]string{"cocoa"}, []string{"cocoa ×3"}))
	assert.Equal(t, []string{"cocoa"}, missing([]string{"cocoa"}, []string{"cocoa butter ×1"}))
	assert.Equal(t, []string{}, missing(nil, nil))
}
