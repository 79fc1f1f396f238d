package repositories

import (
	"context"
	"time"

	"cloudnest/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	CountByUsername(ctx context.Context, username string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (models.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uint) (models.User, error)
	UpdatePassword(ctx context.Context, tx *gorm.DB, userID uint, hashedPassword string) error
}

type FolderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, folderID uint, userID uint) (models.Folder, error)
	ListByParent(ctx context.Context, tx *gorm.DB, userID uint, parentID *uint) ([]models.Folder, error)
	UpdateNameByIDAndUser(ctx context.Context, tx *gorm.DB, folderID uint, userID uint, name string) error
	DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, folderID uint, userID uint) error
	CountByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type FileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	GetByID(ctx context.Context, tx *gorm.DB, fileID uint) (models.File, error)
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, fileID uint, userID uint) (models.File, error)
	ListByFolder(ctx context.Context, tx *gorm.DB, userID uint, folderID *uint) ([]models.File, error)
	DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, fileID uint, userID uint) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, fileIDs []uint) error
	SumSizeByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type ShareLinkRepository interface {
	Create(ctx context.Context, tx *gorm.DB, link *models.ShareLink) error
	GetActiveByToken(ctx context.Context, tx *gorm.DB, token string) (models.ShareLink, error)
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, linkID uint, userID uint) (models.ShareLink, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.ShareLink, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	DeactivateByID(ctx context.Context, tx *gorm.DB, linkID uint) error
	DeactivateExpired(ctx context.Context, tx *gorm.DB, now time.Time) ([]models.ShareLink, error)
	DeleteByFileIDs(ctx context.Context, tx *gorm.DB, fileIDs []uint) error
}

// ShareTokenCache is a read-through cache in front of share-token lookups.
// A miss is not an error; entries are invalidated on deactivation and
// bounded by the link's remaining lifetime.
type ShareTokenCache interface {
	Get(ctx context.Context, token string) (models.ShareLink, bool, error)
	Set(ctx context.Context, link models.ShareLink, ttl time.Duration) error
	Invalidate(ctx context.Context, token string) error
}

type Container struct {
	TxManager  TxManager
	Users      UserRepository
	Folders    FolderRepository
	Files      FileRepository
	ShareLinks ShareLinkRepository
	ShareCache ShareTokenCache
}
