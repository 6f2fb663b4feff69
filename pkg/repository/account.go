package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/client"
	"github.com/Sternrassler/flight-booking-client/pkg/result"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

// AccountRemote is the remote source of the loyalty account.
// A nil account with a nil error means the user has none.
type AccountRemote interface {
	Account(ctx context.Context) (*client.AccountDTO, error)
}

// Account serves the loyalty account. The store holds at most one record.
type Account struct {
	fallback *CacheFallback[client.AccountDTO, store.AccountRecord, booking.Account]
}

// NewAccount creates the account repository.
func NewAccount(remote AccountRemote, local store.Collection[store.AccountRecord], logger zerolog.Logger, opts ...Option) *Account {
	o := applyOptions(opts)
	return &Account{fallback: &CacheFallback[client.AccountDTO, store.AccountRecord, booking.Account]{
		Name: "account",
		Remote: func(ctx context.Context) ([]client.AccountDTO, error) {
			a, err := remote.Account(ctx)
			if err != nil || a == nil {
				return nil, err
			}
			return []client.AccountDTO{*a}, nil
		},
		Local:    local,
		ToEntity: accountRecord(o.now),
		ToModel:  accountModel,
		Logger:   logger,
	}}
}

// GetAccount returns the loyalty account, or nil when neither the remote
// nor the local store has one or the read failed. err is non-nil only when
// ctx was cancelled.
func (r *Account) GetAccount(ctx context.Context) (result.Result[*booking.Account], error) {
	res, err := r.fallback.Fetch(ctx)
	if err != nil {
		return result.Result[*booking.Account]{}, err
	}

	accounts := res.Value()
	if len(accounts) == 0 {
		return result.Ok[*booking.Account](nil), nil
	}
	account := accounts[0]
	return result.Ok(&account), nil
}
