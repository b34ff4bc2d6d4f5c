package wallet

import "context"

type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetByAccountID(ctx context.Context, accountID string) (*Account, error)
	GetByAccountIDForUpdate(ctx context.Context, accountID string) (*Account, error)
	SaveAccount(ctx context.Context, a *Account) error
	CreateEntry(ctx context.Context, e *Entry) error
	ListEntriesByRef(ctx context.Context, kind Kind, refID uint64) ([]Entry, error)
}
