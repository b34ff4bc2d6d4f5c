package mysql

import (
	"context"
	"errors"

	agreementDomain "agrifi-backend/internal/domain/agreement"

	"gorm.io/gorm"
)

type AgreementRepository struct{ db *gorm.DB }

func NewAgreementRepository(db *gorm.DB) *AgreementRepository { return &AgreementRepository{db: db} }

func (r *AgreementRepository) Create(ctx context.Context, a *agreementDomain.Agreement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AgreementRepository) GetByID(ctx context.Context, id uint64) (*agreementDomain.Agreement, error) {
	var out agreementDomain.Agreement
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *AgreementRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*agreementDomain.Agreement, error) {
	var out agreementDomain.Agreement
	res := forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *AgreementRepository) ListByFarmer(ctx context.Context, farmer string) ([]agreementDomain.Agreement, error) {
	var out []agreementDomain.Agreement
	res := r.db.WithContext(ctx).
		Where("farmer = ?", farmer).
		Order("status_updated_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *AgreementRepository) Save(ctx context.Context, a *agreementDomain.Agreement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AgreementRepository) GetSettings(ctx context.Context) (*agreementDomain.Settings, error) {
	var out agreementDomain.Settings
	res := r.db.WithContext(ctx).First(&out)
	return &out, res.Error
}

func (r *AgreementRepository) EnsureSettings(ctx context.Context, owner, oracle string) (*agreementDomain.Settings, error) {
	s, err := r.GetSettings(ctx)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	s = &agreementDomain.Settings{Owner: owner, Oracle: oracle}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *AgreementRepository) SaveSettings(ctx context.Context, s *agreementDomain.Settings) error {
	return r.db.WithContext(ctx).Save(s).Error
}
