package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"go-trade-game"
	"go-trade-game/ledger"
	"go-trade-game/session"
	"go-trade-game/settlement"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Server dependencies for HTTP Server functions
type Server struct {
	Sessions *session.Manager
	Logger   log.Logger
	router   *mux.Router
	printer  *message.Printer
}

func NewServer(m *session.Manager, logger log.Logger) *Server {
	server := &Server{
		Sessions: m,
		Logger:   logger,
		router:   mux.NewRouter(),
		printer:  message.NewPrinter(language.English),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("/api/rates", s.rates()).Methods("GET")
	s.router.Handle("/api/convert", s.convert()).Methods("POST")
	s.router.Handle("/api/accounts", s.accounts()).Methods("GET")
	s.router.Handle("/api/trades", s.settle()).Methods("POST")
	s.router.Handle("/api/trades", s.transactions()).Methods("GET")
	s.router.Handle("/api/trades.csv", s.export()).Methods("GET")
	s.router.Handle("/api/news", s.news()).Methods("PUT")
	s.router.Handle("/api/news/rates/{currency}", s.overrideRate()).Methods("PUT")
	s.router.Handle("/api/session/reset", s.reset()).Methods("POST")
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// display formats an amount with 2 decimals and thousands separators
func (s *Server) display(v float64) string {
	return s.printer.Sprintf("%.2f", v)
}

type rateResponse struct {
	Currency game.Currency `json:"currency"`
	Rate     game.Rate     `json:"rate"`
	Original game.Rate     `json:"original"`
	Display  string        `json:"display"`
}

type boardResponse struct {
	Reference      game.Currency  `json:"reference"`
	OverrideActive bool           `json:"override_active"`
	Origin         string         `json:"origin"`
	Warning        string         `json:"warning,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	Rates          []rateResponse `json:"rates"`
}

func (s *Server) board(b session.RateBoard) boardResponse {
	out := boardResponse{
		Reference:      b.Reference,
		OverrideActive: b.OverrideActive,
		Origin:         string(b.Origin),
		Warning:        b.Warning,
		StartedAt:      b.StartedAt,
		Rates:          []rateResponse{},
	}
	for _, r := range b.Rates {
		out.Rates = append(out.Rates, rateResponse{
			Currency: r.Currency,
			Rate:     r.Rate,
			Original: r.Original,
			Display:  s.display(float64(r.Rate)) + " " + string(b.Reference),
		})
	}
	return out
}

// rates produces HTTP handler for the rate board
func (s *Server) rates() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.writeJSON(rw, http.StatusOK, s.board(s.Sessions.Current().Rates()))
	}
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency game.Currency `json:"fromCurrency"`
		ToCurrency   game.Currency `json:"toCurrency"`
		Amount       game.Amount   `json:"amount"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange game.Rate   `json:"exchange"`
		Amount   game.Amount `json:"amount"`
		Original game.Amount `json:"original"`
		Display  string      `json:"display"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(rw, r, &req) {
			return
		}

		result, err := s.Sessions.Current().Convert(r.Context(), req.Amount, req.FromCurrency, req.ToCurrency)
		if err != nil {
			s.writeError(rw, err)
			return
		}

		s.writeJSON(rw, http.StatusOK, response{
			Exchange: result.Rate,
			Amount:   result.Amount,
			Original: req.Amount,
			Display:  s.display(float64(result.Amount)) + " " + string(req.ToCurrency),
		})
	}
}

type balanceResponse struct {
	Currency game.Currency `json:"currency"`
	Amount   game.Amount   `json:"amount"`
	Display  string        `json:"display"`
}

func (s *Server) balances(views []session.BalanceView) []balanceResponse {
	out := []balanceResponse{}
	for _, b := range views {
		out = append(out, balanceResponse{Currency: b.Currency, Amount: b.Amount, Display: s.display(float64(b.Amount)) + " " + string(b.Currency)})
	}
	return out
}

// accounts produces HTTP handler for the status of every participant
func (s *Server) accounts() http.HandlerFunc {
	type response struct {
		Name      string            `json:"name"`
		Resources []string          `json:"resources"`
		Balances  []balanceResponse `json:"balances"`
		Missing   []string          `json:"missing"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		out := []response{}
		for _, a := range s.Sessions.Current().Accounts() {
			out = append(out, response{
				Name:      a.Name,
				Resources: a.Resources,
				Balances:  s.balances(a.Balances),
				Missing:   a.Missing,
			})
		}
		s.writeJSON(rw, http.StatusOK, out)
	}
}

type recordResponse struct {
	ID       string        `json:"id"`
	Seq      int           `json:"seq"`
	Time     time.Time     `json:"time"`
	Seller   string        `json:"seller"`
	Buyer    string        `json:"buyer"`
	Item     string        `json:"item"`
	Quantity int           `json:"quantity"`
	Price    game.Amount   `json:"price"`
	Currency game.Currency `json:"currency"`
}

func record(r ledger.Record) recordResponse {
	return recordResponse{
		ID:       r.ID.String(),
		Seq:      r.Seq,
		Time:     r.Timestamp,
		Seller:   r.Seller,
		Buyer:    r.Buyer,
		Item:     r.Item,
		Quantity: r.Quantity,
		Price:    r.Price,
		Currency: r.Currency,
	}
}

// settle produces HTTP handler recording trades
func (s *Server) settle() http.HandlerFunc {
	type request struct {
		Seller   string        `json:"seller"`
		Buyer    string        `json:"buyer"`
		Item     string        `json:"item"`
		Quantity int           `json:"quantity"`
		Price    game.Amount   `json:"price"`
		Currency game.Currency `json:"currency"`
	}

	type balances struct {
		Name     string            `json:"name"`
		Balances []balanceResponse `json:"balances"`
	}

	type response struct {
		Record recordResponse `json:"record"`
		Seller balances       `json:"seller"`
		Buyer  balances       `json:"buyer"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(rw, r, &req) {
			return
		}

		result, err := s.Sessions.Current().Settle(r.Context(), settlement.Trade{
			Seller:   req.Seller,
			Buyer:    req.Buyer,
			Item:     req.Item,
			Quantity: req.Quantity,
			Price:    req.Price,
			Currency: req.Currency,
		})
		if err != nil {
			s.writeError(rw, err)
			return
		}

		s.writeJSON(rw, http.StatusCreated, response{
			Record: record(result.Record),
			Seller: balances{Name: req.Seller, Balances: s.balances(sorted(result.SellerBalances))},
			Buyer:  balances{Name: req.Buyer, Balances: s.balances(sorted(result.BuyerBalances))},
		})
	}
}

// transactions produces HTTP handler listing the ledger
func (s *Server) transactions() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		out := []recordResponse{}
		for _, rec := range s.Sessions.Current().Transactions() {
			out = append(out, record(rec))
		}
		s.writeJSON(rw, http.StatusOK, out)
	}
}

// export produces HTTP handler downloading the ledger as CSV
func (s *Server) export() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/csv; charset=utf-8")
		rw.Header().Set("Content-Disposition", `attachment; filename="trade-game-transactions.csv"`)
		if err := s.Sessions.Current().WriteCSV(rw); err != nil {
			s.Logger.Log("msg", "csv export failed", "err", err)
		}
	}
}

// news produces HTTP handler toggling the rate override
func (s *Server) news() http.HandlerFunc {
	type request struct {
		Active bool `json:"active"`
	}

	type response struct {
		Active  bool `json:"active"`
		Changed bool `json:"changed"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(rw, r, &req) {
			return
		}
		changed := s.Sessions.Current().SetOverride(req.Active)
		s.writeJSON(rw, http.StatusOK, response{Active: req.Active, Changed: changed})
	}
}

// overrideRate produces HTTP handler replacing one live rate while news is active
func (s *Server) overrideRate() http.HandlerFunc {
	type request struct {
		Rate game.Rate `json:"rate"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(rw, r, &req) {
			return
		}
		current := s.Sessions.Current()
		if err := current.OverrideRate(game.Currency(mux.Vars(r)["currency"]), req.Rate); err != nil {
			s.writeError(rw, err)
			return
		}
		s.writeJSON(rw, http.StatusOK, s.board(current.Rates()))
	}
}

// reset produces HTTP handler starting a new session
func (s *Server) reset() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		next, err := s.Sessions.Reset(r.Context())
		if err != nil {
			s.writeError(rw, err)
			return
		}
		s.writeJSON(rw, http.StatusOK, s.board(next.Rates()))
	}
}

func (s *Server) decode(rw http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(rw, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return false
	}
	return true
}

func (s *Server) writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		s.Logger.Log("msg", "failed json encoding", "err", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorKinds = []struct {
	err    error
	kind   string
	status int
}{
	{game.ErrSameParticipant, "same_participant", http.StatusUnprocessableEntity},
	{game.ErrInvalidAmount, "invalid_amount", http.StatusUnprocessableEntity},
	{game.ErrUnknownCurrency, "unknown_currency", http.StatusUnprocessableEntity},
	{game.ErrUnknownParticipant, "unknown_participant", http.StatusUnprocessableEntity},
	{game.ErrInvalidItem, "invalid_item", http.StatusUnprocessableEntity},
	{game.ErrReferenceCurrency, "reference_currency", http.StatusUnprocessableEntity},
	{game.ErrInsufficientFunds, "insufficient_funds", http.StatusConflict},
	{game.ErrOverrideInactive, "override_inactive", http.StatusConflict},
}

func (s *Server) writeError(rw http.ResponseWriter, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			s.writeJSON(rw, k.status, errorResponse{Error: k.kind, Message: err.Error()})
			return
		}
	}
	s.Logger.Log("msg", "request failed", "err", err)
	s.writeJSON(rw, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal error"})
}
