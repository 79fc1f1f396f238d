package services

import (
	"context"
	"errors"
	"log"
	"net/http"

	"cloudnest/models"
	"cloudnest/repositories"
	"cloudnest/storage"

	"gorm.io/gorm"
)

type FolderService interface {
	ListFolders(ctx context.Context, userID uint, parentID *uint) ([]models.Folder, error)
	CreateFolder(ctx context.Context, userID uint, name string, parentID *uint) (models.Folder, error)
	RenameFolder(ctx context.Context, userID uint, folderID uint, name string) (models.Folder, error)
	DeleteFolder(ctx context.Context, userID uint, folderID uint) error
}

type folderService struct {
	txManager TxManager
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	links     repositories.ShareLinkRepository
	store     *storage.LocalStore
}

func NewFolderService(
	txManager TxManager,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	links repositories.ShareLinkRepository,
	store *storage.LocalStore,
) FolderService {
	return &folderService{
		txManager: txManager,
		folders:   folders,
		files:     files,
		links:     links,
		store:     store,
	}
}

func (s *folderService) ListFolders(ctx context.Context, userID uint, parentID *uint) ([]models.Folder, error) {
	if parentID != nil {
		if _, err := s.folders.GetByIDAndUser(ctx, nil, *parentID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newAppError(http.StatusNotFound, "parent folder not found", nil)
			}
			return nil, newAppError(http.StatusInternalServerError, "failed to check parent folder", err)
		}
	}

	list, err := s.folders.ListByParent(ctx, nil, userID, parentID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list folders", err)
	}
	return list, nil
}

func (s *folderService) CreateFolder(ctx context.Context, userID uint, name string, parentID *uint) (models.Folder, error) {
	if parentID != nil {
		// the parent must exist and belong to the same user
		if _, err := s.folders.GetByIDAndUser(ctx, nil, *parentID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Folder{}, newAppError(http.StatusNotFound, "parent folder not found", nil)
			}
			return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to check parent folder", err)
		}
	}

	folder := models.Folder{
		UserID:   userID,
		Name:     name,
		ParentID: parentID,
	}
	if err := s.folders.Create(ctx, nil, &folder); err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to create folder", err)
	}
	return folder, nil
}

func (s *folderService) RenameFolder(ctx context.Context, userID uint, folderID uint, name string) (models.Folder, error) {
	folder, err := s.folders.GetByIDAndUser(ctx, nil, folderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusNotFound, "folder not found", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to query folder", err)
	}

	if err := s.folders.UpdateNameByIDAndUser(ctx, nil, folder.ID, userID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusNotFound, "folder not found", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to rename folder", err)
	}

	folder.Name = name
	return folder, nil
}

// DeleteFolder removes the folder row and its direct files, including
// their share links and blobs. Child folders are left in place and keep
// their (now dangling) parent reference.
func (s *folderService) DeleteFolder(ctx context.Context, userID uint, folderID uint) error {
	folder, err := s.folders.GetByIDAndUser(ctx, nil, folderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "folder not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to query folder", err)
	}

	folderIDVal := folder.ID
	containedFiles, err := s.files.ListByFolder(ctx, nil, userID, &folderIDVal)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to list folder contents", err)
	}

	fileIDs := make([]uint, 0, len(containedFiles))
	for _, f := range containedFiles {
		fileIDs = append(fileIDs, f.ID)
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.links.DeleteByFileIDs(ctx, tx, fileIDs); err != nil {
			return err
		}
		if err := s.files.DeleteByIDs(ctx, tx, fileIDs); err != nil {
			return err
		}
		return s.folders.DeleteByIDAndUser(ctx, tx, folder.ID, userID)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete folder", err)
	}

	for _, f := range containedFiles {
		if err := s.store.Remove(f.Path); err != nil {
			log.Printf("delete folder %d: remove blob %s: %v", folder.ID, f.Path, err)
		}
		if f.ThumbnailPath != "" {
			_ = s.store.Remove(f.ThumbnailPath)
		}
	}
	return nil
}
