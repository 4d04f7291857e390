package game

import "errors"

var (
	ErrUnknownCurrency       = errors.New("unknown currency")
	ErrSameParticipant       = errors.New("seller and buyer are the same participant")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrUnknownParticipant    = errors.New("unknown participant")
	ErrInvalidItem           = errors.New("invalid item")
	ErrReferenceCurrency     = errors.New("reference currency rate is fixed")
	ErrOverrideInactive      = errors.New("rate override is not active")
	ErrRateSourceUnavailable = errors.New("rate source unavailable")
	ErrRateSourceMalformed   = errors.New("rate source response malformed")
)
