package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-trade-game"
)

const ApiUrlBase = "https://www.koreaexim.go.kr/site/program/financial/exchangeJSON"

// Service supplies the base exchange rates published for a date,
// as the value of one unit of each currency in the reference currency.
type Service interface {
	ExchangeRates(ctx context.Context, date time.Time) (game.Rates, error)
}

// service Korea Eximbank exchange rate API
type service struct {
	// url base API url
	url string

	// apiKey authkey issued by the bank
	apiKey string

	// aliases maps published unit codes to game currency codes, e.g. CNH -> CNY
	aliases map[string]game.Currency

	// wanted currencies kept from a publication, every row when empty
	wanted map[game.Currency]bool

	// client for HTTP requests
	client http.Client
}

// NewService constructs a valid rate Service. An empty url uses ApiUrlBase.
// Only rows for currencies are parsed; rows for other currencies are ignored even when malformed.
// No currencies parses every row.
func NewService(baseURL string, apiKey string, timeout time.Duration, aliases map[string]game.Currency, currencies []game.Currency) Service {
	if baseURL == "" {
		baseURL = ApiUrlBase
	}
	wanted := map[game.Currency]bool{}
	for _, c := range currencies {
		wanted[c] = true
	}
	return &service{
		url:     baseURL,
		apiKey:  apiKey,
		aliases: aliases,
		wanted:  wanted,
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// ExchangeRates loads the telegraphic transfer selling rates published for date.
// An empty publication (weekends, holidays) is reported as unavailable.
func (s *service) ExchangeRates(ctx context.Context, date time.Time) (game.Rates, error) {
	type item struct {
		Result  int    `json:"result"`
		CurUnit string `json:"cur_unit"`
		TTS     string `json:"tts"`
	}

	query := url.Values{}
	query.Set("authkey", s.apiKey)
	query.Set("searchdate", date.Format("20060102"))
	query.Set("data", "AP01")

	request, err := http.NewRequestWithContext(ctx, "GET", s.url+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w: %w", game.ErrRateSourceUnavailable, err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return nil, fmt.Errorf("http status %d: %w", httpResponse.StatusCode, game.ErrRateSourceUnavailable)
	}

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("reading json: %w: %w", game.ErrRateSourceUnavailable, err)
	}

	var response []item
	if err := json.Unmarshal(bytes, &response); err != nil {
		return nil, fmt.Errorf("decoding json: %w: %w", game.ErrRateSourceMalformed, err)
	}
	if len(response) == 0 {
		return nil, fmt.Errorf("no rates published for %v: %w", date.Format("2006-01-02"), game.ErrRateSourceUnavailable)
	}

	rates := game.Rates{}
	for _, it := range response {
		if it.Result > 1 {
			return nil, fmt.Errorf("api result code %d: %w", it.Result, game.ErrRateSourceUnavailable)
		}
		if !s.wants(it.CurUnit) {
			continue
		}
		code, unit, err := parseUnit(it.CurUnit)
		if err != nil {
			return nil, err
		}
		value, err := parseNumber(it.TTS)
		if err != nil {
			return nil, fmt.Errorf("bad rate value for %v: %w", it.CurUnit, err)
		}
		if value == 0 {
			// not quoted for transfers, e.g. the KRW row
			continue
		}
		rates[s.currency(code)] = game.Rate(value / unit)
	}

	return rates, nil
}

// currency maps a published code to a game currency
func (s *service) currency(code string) game.Currency {
	if alias, ok := s.aliases[code]; ok {
		return alias
	}
	return game.Currency(code)
}

// wants reports whether the row for curUnit should be parsed
func (s *service) wants(curUnit string) bool {
	if len(s.wanted) == 0 {
		return true
	}
	code := strings.TrimSpace(curUnit)
	if open := strings.IndexByte(code, '('); open >= 0 {
		code = code[:open]
	}
	return s.wanted[s.currency(code)]
}

// parseUnit splits "JPY(100)" into the code and the number of units the rate is quoted for
func parseUnit(curUnit string) (string, float64, error) {
	curUnit = strings.TrimSpace(curUnit)
	open := strings.IndexByte(curUnit, '(')
	if open < 0 {
		if curUnit == "" {
			return "", 0, fmt.Errorf("empty cur_unit: %w", game.ErrRateSourceMalformed)
		}
		return curUnit, 1, nil
	}
	if !strings.HasSuffix(curUnit, ")") || open == 0 {
		return "", 0, fmt.Errorf("bad cur_unit %q: %w", curUnit, game.ErrRateSourceMalformed)
	}
	unit, err := strconv.ParseFloat(curUnit[open+1:len(curUnit)-1], 64)
	if err != nil || unit <= 0 {
		return "", 0, fmt.Errorf("bad cur_unit %q: %w", curUnit, game.ErrRateSourceMalformed)
	}
	return curUnit[:open], unit, nil
}

// parseNumber parses published numbers such as "1,400.5". Blank is zero.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", game.ErrRateSourceMalformed, err)
	}
	if !game.Amount(f).Finite() || f < 0 {
		return 0, fmt.Errorf("non-positive rate %q: %w", s, game.ErrRateSourceMalformed)
	}
	return f, nil
}
