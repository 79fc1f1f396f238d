package repositories

import (
	"context"

	"cloudnest/models"

	"gorm.io/gorm"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) Create(_ context.Context, tx *gorm.DB, file *models.File) error {
	return useTx(r.db, tx).Create(file).Error
}

func (r *GormFileRepository) GetByID(_ context.Context, tx *gorm.DB, fileID uint) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).First(&file, fileID).Error
	return file, err
}

func (r *GormFileRepository) GetByIDAndUser(_ context.Context, tx *gorm.DB, fileID uint, userID uint) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).Where("id = ? AND user_id = ?", fileID, userID).First(&file).Error
	return file, err
}

func (r *GormFileRepository) ListByFolder(_ context.Context, tx *gorm.DB, userID uint, folderID *uint) ([]models.File, error) {
	db := useTx(r.db, tx).Where("user_id = ?", userID)
	if folderID == nil {
		db = db.Where("folder_id IS NULL")
	} else {
		db = db.Where("folder_id = ?", *folderID)
	}

	var files []models.File
	err := db.Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) DeleteByIDAndUser(_ context.Context, tx *gorm.DB, fileID uint, userID uint) error {
	return useTx(r.db, tx).Where("id = ? AND user_id = ?", fileID, userID).Delete(&models.File{}).Error
}

func (r *GormFileRepository) DeleteByIDs(_ context.Context, tx *gorm.DB, fileIDs []uint) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).Where("id IN ?", fileIDs).Delete(&models.File{}).Error
}

func (r *GormFileRepository) SumSizeByUser(_ context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var total int64
	err := useTx(r.db, tx).Model(&models.File{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(size), 0)").
		Scan(&total).Error
	return total, err
}

func (r *GormFileRepository) CountByUser(_ context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := useTx(r.db, tx).Model(&models.File{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
