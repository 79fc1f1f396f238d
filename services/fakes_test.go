package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"cloudnest/config"
	"cloudnest/models"

	"gorm.io/gorm"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{
		Storage: config.StorageConfig{
			MaxFileSize:      50 * 1024 * 1024,
			DefaultUserQuota: 10 * 1024 * 1024 * 1024,
		},
		Share: config.ShareConfig{
			TokenLength:     32,
			CacheTTL:        300,
			CleanupInterval: 3600,
		},
		Thumbnail: config.ThumbnailConfig{Width: 200, Height: 200, Quality: 80},
		JWT:       config.JWTConfig{Secret: "test-secret", ExpireHours: 168},
	}
	t.Cleanup(func() { config.AppConfig = prev })
}

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	users             map[uint]models.User
	nextID            uint
	createErr         error
	getErr            error
	updatePasswordErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}, nextID: 1}
}

func (r *fakeUserRepo) CountByUsername(_ context.Context, username string) (int64, error) {
	var count int64
	for _, u := range r.users {
		if u.Username == username {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, _ *gorm.DB, username string) (models.User, error) {
	if r.getErr != nil {
		return models.User{}, r.getErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uint) (models.User, error) {
	if r.getErr != nil {
		return models.User{}, r.getErr
	}
	u, ok := r.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, _ *gorm.DB, userID uint, hashedPassword string) error {
	if r.updatePasswordErr != nil {
		return r.updatePasswordErr
	}
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashedPassword
	r.users[userID] = u
	return nil
}

type fakeFolderRepo struct {
	folders   map[uint]models.Folder
	nextID    uint
	createErr error
	getErr    error
	listErr   error
	updateErr error
	deleteErr error
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: map[uint]models.Folder{}, nextID: 1}
}

func (r *fakeFolderRepo) Create(_ context.Context, _ *gorm.DB, folder *models.Folder) error {
	if r.createErr != nil {
		return r.createErr
	}
	if folder.ID == 0 {
		folder.ID = r.nextID
		r.nextID++
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) GetByIDAndUser(_ context.Context, _ *gorm.DB, folderID uint, userID uint) (models.Folder, error) {
	if r.getErr != nil {
		return models.Folder{}, r.getErr
	}
	folder, ok := r.folders[folderID]
	if !ok || folder.UserID != userID {
		return models.Folder{}, gorm.ErrRecordNotFound
	}
	return folder, nil
}

func (r *fakeFolderRepo) ListByParent(_ context.Context, _ *gorm.DB, userID uint, parentID *uint) ([]models.Folder, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Folder, 0)
	for _, folder := range r.folders {
		if folder.UserID != userID {
			continue
		}
		if parentID == nil {
			if folder.ParentID == nil {
				out = append(out, folder)
			}
			continue
		}
		if folder.ParentID != nil && *folder.ParentID == *parentID {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFolderRepo) UpdateNameByIDAndUser(_ context.Context, _ *gorm.DB, folderID uint, userID uint, name string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	folder, ok := r.folders[folderID]
	if !ok || folder.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	folder.Name = name
	r.folders[folderID] = folder
	return nil
}

func (r *fakeFolderRepo) DeleteByIDAndUser(_ context.Context, _ *gorm.DB, folderID uint, userID uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	folder, ok := r.folders[folderID]
	if !ok || folder.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(r.folders, folderID)
	return nil
}

func (r *fakeFolderRepo) CountByUser(_ context.Context, _ *gorm.DB, userID uint) (int64, error) {
	var count int64
	for _, folder := range r.folders {
		if folder.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fakeFileRepo struct {
	files     map[uint]models.File
	nextID    uint
	createErr error
	getErr    error
	listErr   error
	deleteErr error
	sumErr    error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[uint]models.File{}, nextID: 1}
}

func (r *fakeFileRepo) Create(_ context.Context, _ *gorm.DB, file *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	if file.ID == 0 {
		file.ID = r.nextID
		r.nextID++
	}
	file.CreatedAt = time.Now()
	r.files[file.ID] = *file
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, _ *gorm.DB, fileID uint) (models.File, error) {
	if r.getErr != nil {
		return models.File{}, r.getErr
	}
	file, ok := r.files[fileID]
	if !ok {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (r *fakeFileRepo) GetByIDAndUser(_ context.Context, _ *gorm.DB, fileID uint, userID uint) (models.File, error) {
	if r.getErr != nil {
		return models.File{}, r.getErr
	}
	file, ok := r.files[fileID]
	if !ok || file.UserID != userID {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (r *fakeFileRepo) ListByFolder(_ context.Context, _ *gorm.DB, userID uint, folderID *uint) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.File, 0)
	for _, file := range r.files {
		if file.UserID != userID {
			continue
		}
		if folderID == nil {
			if file.FolderID == nil {
				out = append(out, file)
			}
			continue
		}
		if file.FolderID != nil && *file.FolderID == *folderID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFileRepo) DeleteByIDAndUser(_ context.Context, _ *gorm.DB, fileID uint, userID uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	file, ok := r.files[fileID]
	if !ok || file.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(r.files, fileID)
	return nil
}

func (r *fakeFileRepo) DeleteByIDs(_ context.Context, _ *gorm.DB, fileIDs []uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for _, id := range fileIDs {
		delete(r.files, id)
	}
	return nil
}

func (r *fakeFileRepo) SumSizeByUser(_ context.Context, _ *gorm.DB, userID uint) (int64, error) {
	if r.sumErr != nil {
		return 0, r.sumErr
	}
	var sum int64
	for _, file := range r.files {
		if file.UserID == userID {
			sum += file.Size
		}
	}
	return sum, nil
}

func (r *fakeFileRepo) CountByUser(_ context.Context, _ *gorm.DB, userID uint) (int64, error) {
	var count int64
	for _, file := range r.files {
		if file.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fakeShareLinkRepo struct {
	links         map[uint]models.ShareLink
	nextID        uint
	createErr     error
	getErr        error
	deactivateErr error
	// duplicateTokens forces Create to report a unique-index violation
	// this many times before succeeding.
	duplicateTokens int
	createCalls     int
}

func newFakeShareLinkRepo() *fakeShareLinkRepo {
	return &fakeShareLinkRepo{links: map[uint]models.ShareLink{}, nextID: 1}
}

func (r *fakeShareLinkRepo) Create(_ context.Context, _ *gorm.DB, link *models.ShareLink) error {
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if r.duplicateTokens > 0 {
		r.duplicateTokens--
		return gorm.ErrDuplicatedKey
	}
	for _, l := range r.links {
		if l.Token == link.Token {
			return gorm.ErrDuplicatedKey
		}
	}
	if link.ID == 0 {
		link.ID = r.nextID
		r.nextID++
	}
	link.CreatedAt = time.Now()
	r.links[link.ID] = *link
	return nil
}

func (r *fakeShareLinkRepo) GetActiveByToken(_ context.Context, _ *gorm.DB, token string) (models.ShareLink, error) {
	if r.getErr != nil {
		return models.ShareLink{}, r.getErr
	}
	for _, l := range r.links {
		if l.Token == token && l.IsActive {
			return l, nil
		}
	}
	return models.ShareLink{}, gorm.ErrRecordNotFound
}

func (r *fakeShareLinkRepo) GetByIDAndUser(_ context.Context, _ *gorm.DB, linkID uint, userID uint) (models.ShareLink, error) {
	if r.getErr != nil {
		return models.ShareLink{}, r.getErr
	}
	link, ok := r.links[linkID]
	if !ok || link.UserID != userID {
		return models.ShareLink{}, gorm.ErrRecordNotFound
	}
	return link, nil
}

func (r *fakeShareLinkRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uint) ([]models.ShareLink, error) {
	out := make([]models.ShareLink, 0)
	for _, l := range r.links {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeShareLinkRepo) CountByUser(_ context.Context, _ *gorm.DB, userID uint) (int64, error) {
	var count int64
	for _, l := range r.links {
		if l.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeShareLinkRepo) DeactivateByID(_ context.Context, _ *gorm.DB, linkID uint) error {
	if r.deactivateErr != nil {
		return r.deactivateErr
	}
	link, ok := r.links[linkID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	link.IsActive = false
	r.links[linkID] = link
	return nil
}

func (r *fakeShareLinkRepo) DeactivateExpired(_ context.Context, _ *gorm.DB, now time.Time) ([]models.ShareLink, error) {
	expired := make([]models.ShareLink, 0)
	for id, l := range r.links {
		if l.IsActive && l.ExpiresAt != nil && l.ExpiresAt.Before(now) {
			l.IsActive = false
			r.links[id] = l
			expired = append(expired, l)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}

func (r *fakeShareLinkRepo) DeleteByFileIDs(_ context.Context, _ *gorm.DB, fileIDs []uint) error {
	for id, l := range r.links {
		for _, fileID := range fileIDs {
			if l.FileID == fileID {
				delete(r.links, id)
			}
		}
	}
	return nil
}

type fakeShareCache struct {
	entries        map[string]models.ShareLink
	getErr         error
	setErr         error
	invalidateErr  error
	invalidateKeys []string
	setCalls       int
}

func newFakeShareCache() *fakeShareCache {
	return &fakeShareCache{entries: map[string]models.ShareLink{}}
}

func (c *fakeShareCache) Get(_ context.Context, token string) (models.ShareLink, bool, error) {
	if c.getErr != nil {
		return models.ShareLink{}, false, c.getErr
	}
	link, ok := c.entries[token]
	return link, ok, nil
}

func (c *fakeShareCache) Set(_ context.Context, link models.ShareLink, _ time.Duration) error {
	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[link.Token] = link
	return nil
}

func (c *fakeShareCache) Invalidate(_ context.Context, token string) error {
	c.invalidateKeys = append(c.invalidateKeys, token)
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	delete(c.entries, token)
	return nil
}
