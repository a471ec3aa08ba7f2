package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/social-feed-api/internal/domain"
	"gorm.io/gorm"
)

type SessionRepo struct{ db *gorm.DB }

func NewSessionRepo(db *gorm.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error {
	return r.db.WithContext(ctx).Create(toSessionRow(s)).Error
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var row sessionRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *SessionRepo) Disable(ctx context.Context, sessionID string) error {
	tx := r.db.WithContext(ctx).Model(&sessionRow{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{"enable": false, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	return nil
}
