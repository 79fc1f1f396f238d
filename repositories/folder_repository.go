package repositories

import (
	"context"

	"cloudnest/models"

	"gorm.io/gorm"
)

type GormFolderRepository struct {
	db *gorm.DB
}

func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	return &GormFolderRepository{db: db}
}

func (r *GormFolderRepository) Create(_ context.Context, tx *gorm.DB, folder *models.Folder) error {
	return useTx(r.db, tx).Create(folder).Error
}

func (r *GormFolderRepository) GetByIDAndUser(_ context.Context, tx *gorm.DB, folderID uint, userID uint) (models.Folder, error) {
	var folder models.Folder
	err := useTx(r.db, tx).Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error
	return folder, err
}

func (r *GormFolderRepository) ListByParent(_ context.Context, tx *gorm.DB, userID uint, parentID *uint) ([]models.Folder, error) {
	db := useTx(r.db, tx).Where("user_id = ?", userID)
	if parentID == nil {
		db = db.Where("parent_id IS NULL")
	} else {
		db = db.Where("parent_id = ?", *parentID)
	}

	var folders []models.Folder
	err := db.Order("name ASC").Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) UpdateNameByIDAndUser(_ context.Context, tx *gorm.DB, folderID uint, userID uint, name string) error {
	result := useTx(r.db, tx).Model(&models.Folder{}).
		Where("id = ? AND user_id = ?", folderID, userID).
		Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormFolderRepository) DeleteByIDAndUser(_ context.Context, tx *gorm.DB, folderID uint, userID uint) error {
	return useTx(r.db, tx).Where("id = ? AND user_id = ?", folderID, userID).Delete(&models.Folder{}).Error
}

func (r *GormFolderRepository) CountByUser(_ context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := useTx(r.db, tx).Model(&models.Folder{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
