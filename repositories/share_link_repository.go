package repositories

import (
	"context"
	"time"

	"cloudnest/models"

	"gorm.io/gorm"
)

type GormShareLinkRepository struct {
	db *gorm.DB
}

func NewGormShareLinkRepository(db *gorm.DB) *GormShareLinkRepository {
	return &GormShareLinkRepository{db: db}
}

func (r *GormShareLinkRepository) Create(_ context.Context, tx *gorm.DB, link *models.ShareLink) error {
	return useTx(r.db, tx).Create(link).Error
}

func (r *GormShareLinkRepository) GetActiveByToken(_ context.Context, tx *gorm.DB, token string) (models.ShareLink, error) {
	var link models.ShareLink
	err := useTx(r.db, tx).Where("token = ? AND is_active = ?", token, true).First(&link).Error
	return link, err
}

func (r *GormShareLinkRepository) GetByIDAndUser(_ context.Context, tx *gorm.DB, linkID uint, userID uint) (models.ShareLink, error) {
	var link models.ShareLink
	err := useTx(r.db, tx).Where("id = ? AND user_id = ?", linkID, userID).First(&link).Error
	return link, err
}

func (r *GormShareLinkRepository) ListByUser(_ context.Context, tx *gorm.DB, userID uint) ([]models.ShareLink, error) {
	var links []models.ShareLink
	err := useTx(r.db, tx).Where("user_id = ?", userID).Order("created_at DESC").Find(&links).Error
	return links, err
}

func (r *GormShareLinkRepository) CountByUser(_ context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := useTx(r.db, tx).Model(&models.ShareLink{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *GormShareLinkRepository) DeactivateByID(_ context.Context, tx *gorm.DB, linkID uint) error {
	return useTx(r.db, tx).Model(&models.ShareLink{}).
		Where("id = ?", linkID).
		Update("is_active", false).Error
}

func (r *GormShareLinkRepository) DeactivateExpired(_ context.Context, tx *gorm.DB, now time.Time) ([]models.ShareLink, error) {
	db := useTx(r.db, tx)

	var expired []models.ShareLink
	err := db.Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now).Find(&expired).Error
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(expired))
	for _, link := range expired {
		ids = append(ids, link.ID)
	}
	err = db.Model(&models.ShareLink{}).Where("id IN ?", ids).Update("is_active", false).Error
	return expired, err
}

func (r *GormShareLinkRepository) DeleteByFileIDs(_ context.Context, tx *gorm.DB, fileIDs []uint) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).Where("file_id IN ?", fileIDs).Delete(&models.ShareLink{}).Error
}
