package agreement

import "context"

type Repository interface {
	Create(ctx context.Context, a *Agreement) error
	GetByID(ctx context.Context, id uint64) (*Agreement, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Agreement, error)
	ListByFarmer(ctx context.Context, farmer string) ([]Agreement, error)
	Save(ctx context.Context, a *Agreement) error

	// GetSettings returns the ledger control row; EnsureSettings seeds it on
	// first boot and is a no-op when the row already exists.
	GetSettings(ctx context.Context) (*Settings, error)
	EnsureSettings(ctx context.Context, owner, oracle string) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}
