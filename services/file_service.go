package services

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"cloudnest/config"
	"cloudnest/models"
	"cloudnest/repositories"
	"cloudnest/storage"

	"gorm.io/gorm"
)

// FileView is a file row enriched for display.
type FileView struct {
	models.File
	SizeFormatted string `json:"size_formatted"`
	Icon          string `json:"icon"`
}

type FileAccessOutput struct {
	File         models.File
	AbsPath      string
	ContentType  string
	DownloadName string
}

type FileService interface {
	ListFiles(ctx context.Context, userID uint, folderID *uint) ([]FileView, error)
	GetFile(ctx context.Context, userID uint, fileID uint) (FileView, error)
	Upload(ctx context.Context, userID uint, folderID *uint, parts []*multipart.FileHeader) ([]FileView, error)
	GetDownloadInfo(ctx context.Context, userID uint, fileID uint) (FileAccessOutput, error)
	GetThumbnailInfo(ctx context.Context, userID uint, fileID uint) (FileAccessOutput, error)
	Delete(ctx context.Context, userID uint, fileID uint) error
	StorageUsed(ctx context.Context, userID uint) (int64, error)
	FileCount(ctx context.Context, userID uint) (int64, error)
}

type fileService struct {
	txManager TxManager
	users     repositories.UserRepository
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	links     repositories.ShareLinkRepository
	store     *storage.LocalStore
}

func NewFileService(
	txManager TxManager,
	users repositories.UserRepository,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	links repositories.ShareLinkRepository,
	store *storage.LocalStore,
) FileService {
	return &fileService{
		txManager: txManager,
		users:     users,
		folders:   folders,
		files:     files,
		links:     links,
		store:     store,
	}
}

func newFileView(file models.File) FileView {
	return FileView{
		File:          file,
		SizeFormatted: FormatFileSize(file.Size),
		Icon:          FileIcon(file.Filename, file.MimeType),
	}
}

func (s *fileService) resolveFolder(ctx context.Context, userID uint, folderID *uint) error {
	if folderID == nil {
		return nil
	}
	if _, err := s.folders.GetByIDAndUser(ctx, nil, *folderID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "target folder not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to check target folder", err)
	}
	return nil
}

func (s *fileService) ListFiles(ctx context.Context, userID uint, folderID *uint) ([]FileView, error) {
	if err := s.resolveFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}

	list, err := s.files.ListByFolder(ctx, nil, userID, folderID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list files", err)
	}

	views := make([]FileView, 0, len(list))
	for _, f := range list {
		views = append(views, newFileView(f))
	}
	return views, nil
}

func (s *fileService) GetFile(ctx context.Context, userID uint, fileID uint) (FileView, error) {
	file, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FileView{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return FileView{}, newAppError(http.StatusInternalServerError, "failed to query file", err)
	}
	return newFileView(file), nil
}

// Upload validates every incoming part before any blob is written: the
// per-file size cap rejects the whole request up front, and the quota
// check covers the combined payload. Each file is then streamed to the
// blob store first and its metadata row inserted second; a failed insert
// removes the just-written blob so no orphan survives.
func (s *fileService) Upload(ctx context.Context, userID uint, folderID *uint, parts []*multipart.FileHeader) ([]FileView, error) {
	if len(parts) == 0 {
		return nil, newAppError(http.StatusBadRequest, "no files provided", nil)
	}

	maxFileSize := config.AppConfig.Storage.MaxFileSize
	var incoming int64
	for _, part := range parts {
		if part.Size > maxFileSize {
			return nil, newAppErrorWithData(http.StatusRequestEntityTooLarge, "file exceeds the size limit", map[string]interface{}{
				"file":          part.Filename,
				"max_file_size": maxFileSize,
			}, nil)
		}
		incoming += part.Size
	}

	if err := s.resolveFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to query user", err)
	}
	used, err := s.files.SumSizeByUser(ctx, nil, userID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to compute storage usage", err)
	}
	if used+incoming > user.StorageQuota {
		return nil, newAppErrorWithData(http.StatusBadRequest, "storage quota exceeded", map[string]interface{}{
			"storage_quota":   user.StorageQuota,
			"storage_used":    used,
			"available_space": user.StorageQuota - used,
			"required_space":  incoming,
		}, nil)
	}

	views := make([]FileView, 0, len(parts))
	for _, part := range parts {
		view, err := s.uploadOne(ctx, userID, folderID, part)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *fileService) uploadOne(ctx context.Context, userID uint, folderID *uint, part *multipart.FileHeader) (FileView, error) {
	src, err := part.Open()
	if err != nil {
		return FileView{}, newAppError(http.StatusBadRequest, "failed to read uploaded file", err)
	}
	defer src.Close()

	name, relPath, size, err := s.store.Save(userID, part.Filename, src)
	if err != nil {
		return FileView{}, newAppError(http.StatusInternalServerError, "failed to store file", err)
	}

	mimeType := part.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var thumbnailPath string
	if IsImageFile(part.Filename) {
		thumbRel := s.store.ThumbnailPath(userID, name)
		if err := GenerateThumbnail(s.store.Abs(relPath), s.store.Abs(thumbRel)); err == nil {
			thumbnailPath = thumbRel
		}
	}

	record := models.File{
		UserID:        userID,
		FolderID:      folderID,
		Filename:      name,
		OriginalName:  part.Filename,
		MimeType:      mimeType,
		Size:          size,
		Path:          relPath,
		ThumbnailPath: thumbnailPath,
	}
	if err := s.files.Create(ctx, nil, &record); err != nil {
		_ = s.store.Remove(relPath)
		if thumbnailPath != "" {
			_ = s.store.Remove(thumbnailPath)
		}
		return FileView{}, newAppError(http.StatusInternalServerError, "failed to save file record", err)
	}

	return newFileView(record), nil
}

func (s *fileService) GetDownloadInfo(ctx context.Context, userID uint, fileID uint) (FileAccessOutput, error) {
	file, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FileAccessOutput{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return FileAccessOutput{}, newAppError(http.StatusInternalServerError, "failed to query file", err)
	}

	// checked immediately before streaming so a concurrent delete fails
	// cleanly instead of serving a partial read
	if !s.store.Exists(file.Path) {
		return FileAccessOutput{}, newAppError(http.StatusGone, "file content missing from storage", nil)
	}

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return FileAccessOutput{
		File:         file,
		AbsPath:      s.store.Abs(file.Path),
		ContentType:  contentType,
		DownloadName: file.OriginalName,
	}, nil
}

func (s *fileService) GetThumbnailInfo(ctx context.Context, userID uint, fileID uint) (FileAccessOutput, error) {
	file, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FileAccessOutput{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return FileAccessOutput{}, newAppError(http.StatusInternalServerError, "failed to query file", err)
	}
	if file.ThumbnailPath == "" || !s.store.Exists(file.ThumbnailPath) {
		return FileAccessOutput{}, newAppError(http.StatusNotFound, "thumbnail not found", nil)
	}

	return FileAccessOutput{
		File:        file,
		AbsPath:     s.store.Abs(file.ThumbnailPath),
		ContentType: "image/jpeg",
	}, nil
}

// Delete removes the blob first and the metadata row second. A missing
// blob is fine; a failing blob deletion aborts so the inconsistency is
// surfaced instead of leaving unreachable bytes behind.
func (s *fileService) Delete(ctx context.Context, userID uint, fileID uint) error {
	file, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "file not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to query file", err)
	}

	if err := s.store.Remove(file.Path); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete file content", err)
	}
	if file.ThumbnailPath != "" {
		_ = s.store.Remove(file.ThumbnailPath)
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.links.DeleteByFileIDs(ctx, tx, []uint{file.ID}); err != nil {
			return err
		}
		return s.files.DeleteByIDAndUser(ctx, tx, file.ID, userID)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete file record", err)
	}
	return nil
}

func (s *fileService) StorageUsed(ctx context.Context, userID uint) (int64, error) {
	used, err := s.files.SumSizeByUser(ctx, nil, userID)
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "failed to compute storage usage", err)
	}
	return used, nil
}

func (s *fileService) FileCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.files.CountByUser(ctx, nil, userID)
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "failed to count files", err)
	}
	return count, nil
}
