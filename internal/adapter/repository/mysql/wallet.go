package mysql

import (
	"context"

	walletDomain "agrifi-backend/internal/domain/wallet"

	"gorm.io/gorm"
)

type WalletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) *WalletRepository { return &WalletRepository{db: db} }

func (r *WalletRepository) CreateAccount(ctx context.Context, a *walletDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *WalletRepository) GetByAccountID(ctx context.Context, accountID string) (*walletDomain.Account, error) {
	var out walletDomain.Account
	res := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&out)
	return &out, res.Error
}

func (r *WalletRepository) GetByAccountIDForUpdate(ctx context.Context, accountID string) (*walletDomain.Account, error) {
	var out walletDomain.Account
	res := forUpdate(r.db.WithContext(ctx)).
		Where("account_id = ?", accountID).
		First(&out)
	return &out, res.Error
}

func (r *WalletRepository) SaveAccount(ctx context.Context, a *walletDomain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *WalletRepository) CreateEntry(ctx context.Context, e *walletDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *WalletRepository) ListEntriesByRef(ctx context.Context, kind walletDomain.Kind, refID uint64) ([]walletDomain.Entry, error) {
	var out []walletDomain.Entry
	res := r.db.WithContext(ctx).
		Where("kind = ? AND ref_id = ?", kind, refID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
