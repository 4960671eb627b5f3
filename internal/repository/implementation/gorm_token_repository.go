package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orl-assistant/internal/model"
	"orl-assistant/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTokenRepository stores slots in the stored_credentials table, for service deployments
// where several wrapper processes share one credential.
type GormTokenRepository struct {
	db *gorm.DB
}

var _ contract.TokenRepository = (*GormTokenRepository)(nil)

func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

func (r *GormTokenRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&model.StoredCredential{})
}

func (r *GormTokenRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var row model.StoredCredential
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load credential %s: %w", key, err)
	}
	return row.Value, row.Value != "", nil
}

func (r *GormTokenRepository) Set(ctx context.Context, key string, value string) error {
	row := model.StoredCredential{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save credential %s: %w", key, err)
	}
	return nil
}

func (r *GormTokenRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key).Delete(&model.StoredCredential{}).Error; err != nil {
		return fmt.Errorf("delete credential %s: %w", key, err)
	}
	return nil
}
