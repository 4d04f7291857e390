package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"go-trade-game"
)

func seedTable() *Table {
	return NewTable("KRW", game.Rates{"KRW": 1, "USD": 1400, "JPY": 9, "CNY": 195})
}

func TestService_Convert(t *testing.T) {
	service := NewLoggingService(log.NewNopLogger(), NewService(seedTable()))

	type args struct {
		amount game.Amount
		from   game.Currency
		to     game.Currency
	}
	tests := []struct {
		name    string
		args    args
		want    game.Exchanged
		wantErr error
	}{
		{
			"usd -> krw",
			args{1, "USD", "KRW"},
			game.Exchanged{Rate: 1400, Amount: 1400},
			nil,
		},
		{
			"krw -> usd",
			args{1400, "KRW", "USD"},
			game.Exchanged{Rate: 1.0 / 1400, Amount: 1},
			nil,
		},
		{
			"usd -> usd",
			args{12.5, "USD", "USD"},
			game.Exchanged{Rate: 1, Amount: 12.5},
			nil,
		},
		{
			"zero",
			args{0, "JPY", "CNY"},
			game.Exchanged{Rate: 9.0 / 195, Amount: 0},
			nil,
		},
		{
			"negative",
			args{-1, "USD", "KRW"},
			game.Exchanged{},
			game.ErrInvalidAmount,
		},
		{
			"usd -> xyz",
			args{10, "USD", "XYZ"},
			game.Exchanged{},
			game.ErrUnknownCurrency,
		},
		{
			"abc -> krw",
			args{10, "ABC", "KRW"},
			game.Exchanged{},
			game.ErrUnknownCurrency,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Convert(context.Background(), tt.args.amount, tt.args.from, tt.args.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.InDelta(t, float64(tt.want.Rate), float64(got.Rate), 1e-12)
			assert.InDelta(t, float64(tt.want.Amount), float64(got.Amount), 1e-9)
		})
	}
}

func TestConvert_Identity(t *testing.T) {
	table := seedTable()
	for _, c := range table.Currencies() {
		got, err := Convert(123.45, c, c, table)
		assert.NoError(t, err)
		assert.Equal(t, game.Amount(123.45), got, c)
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	table := seedTable()
	amounts := []game.Amount{0, 0.01, 1, 30, 5000, 123456.78}
	for _, from := range table.Currencies() {
		for _, to := range table.Currencies() {
			for _, amount := range amounts {
				there, err := Convert(amount, from, to, table)
				assert.NoError(t, err)
				back, err := Convert(there, to, from, table)
				assert.NoError(t, err)
				assert.InDelta(t, float64(amount), float64(back), 1e-9, "%v %v -> %v", amount, from, to)
			}
		}
	}
}

func TestConvert_SeedRates(t *testing.T) {
	table := seedTable()

	got, err := Convert(1, "USD", "KRW", table)
	assert.NoError(t, err)
	assert.Equal(t, game.Amount(1400), got)

	got, err = Convert(1400, "KRW", "USD", table)
	assert.NoError(t, err)
	assert.Equal(t, game.Amount(1), got)
}

func TestConvert_ReadsLiveRates(t *testing.T) {
	table := seedTable()

	before, _ := Convert(1, "USD", "KRW", table)
	assert.NoError(t, table.Override("USD", 2000))
	after, _ := Convert(1, "USD", "KRW", table)

	assert.Equal(t, game.Amount(1400), before)
	assert.Equal(t, game.Amount(2000), after)
}
