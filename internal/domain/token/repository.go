package token

import "context"

type Repository interface {
	Create(ctx context.Context, t *Token) error
	GetByID(ctx context.Context, id uint64) (*Token, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Token, error)
	ListByOwner(ctx context.Context, owner string) ([]Token, error)
	Save(ctx context.Context, t *Token) error
	Delete(ctx context.Context, t *Token) error
}
