package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"testing"

	"cloudnest/config"
	"cloudnest/models"
	"cloudnest/storage"
)

type testUpload struct {
	name    string
	content []byte
}

func makeFileHeaders(t *testing.T, uploads []testUpload) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, u := range uploads {
		part, err := w.CreateFormFile("files", u.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(u.content); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(64 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["files"]
}

type fileServiceFixture struct {
	users   *fakeUserRepo
	folders *fakeFolderRepo
	files   *fakeFileRepo
	links   *fakeShareLinkRepo
	store   *storage.LocalStore
	svc     FileService
}

func newFileServiceFixture(t *testing.T) *fileServiceFixture {
	t.Helper()
	setTestConfig(t)

	f := &fileServiceFixture{
		users:   newFakeUserRepo(),
		folders: newFakeFolderRepo(),
		files:   newFakeFileRepo(),
		links:   newFakeShareLinkRepo(),
		store:   storage.NewLocalStore(t.TempDir()),
	}
	f.users.users[1] = models.User{ID: 1, Username: "alice", StorageQuota: 10 * 1024 * 1024}
	f.svc = NewFileService(fakeTxManager{}, f.users, f.folders, f.files, f.links, f.store)
	return f
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	f := newFileServiceFixture(t)
	content := []byte("quarterly numbers")
	parts := makeFileHeaders(t, []testUpload{{name: "report.pdf", content: content}})

	views, err := f.svc.Upload(context.Background(), 1, nil, parts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 file, got %d", len(views))
	}
	view := views[0]
	if view.OriginalName != "report.pdf" {
		t.Fatalf("expected original name preserved, got %q", view.OriginalName)
	}
	if view.Filename == "report.pdf" || view.Filename == "" {
		t.Fatalf("expected generated physical name, got %q", view.Filename)
	}
	if view.Size != int64(len(content)) {
		t.Fatalf("expected size %d, got %d", len(content), view.Size)
	}
	if view.Icon != "fa-file-pdf" {
		t.Fatalf("expected pdf icon, got %q", view.Icon)
	}

	out, err := f.svc.GetDownloadInfo(context.Background(), 1, view.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.DownloadName != "report.pdf" {
		t.Fatalf("expected download name report.pdf, got %q", out.DownloadName)
	}
	got, err := os.ReadFile(out.AbsPath)
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("stored content differs from upload")
	}
}

func TestUploadRejectsOversizedFileBeforeWriting(t *testing.T) {
	f := newFileServiceFixture(t)
	config.AppConfig.Storage.MaxFileSize = 8

	parts := makeFileHeaders(t, []testUpload{
		{name: "small.txt", content: []byte("ok")},
		{name: "big.txt", content: []byte("way past the limit")},
	})

	_, err := f.svc.Upload(context.Background(), 1, nil, parts)
	requireAppError(t, err, http.StatusRequestEntityTooLarge)

	if len(f.files.files) != 0 {
		t.Fatalf("expected no metadata rows, got %d", len(f.files.files))
	}
	used, _ := f.svc.StorageUsed(context.Background(), 1)
	if used != 0 {
		t.Fatalf("expected no storage used, got %d", used)
	}
}

func TestUploadQuotaExceeded(t *testing.T) {
	f := newFileServiceFixture(t)
	f.users.users[1] = models.User{ID: 1, Username: "alice", StorageQuota: 10}
	f.files.files[1] = models.File{ID: 1, UserID: 1, Size: 8, Path: "uploads/1/existing.bin"}
	f.files.nextID = 2

	parts := makeFileHeaders(t, []testUpload{{name: "more.txt", content: []byte("xyz")}})
	_, err := f.svc.Upload(context.Background(), 1, nil, parts)
	appErr := requireAppError(t, err, http.StatusBadRequest)
	if appErr.Data == nil {
		t.Fatalf("expected quota details in error data")
	}
	if len(f.files.files) != 1 {
		t.Fatalf("expected no new rows, got %d", len(f.files.files))
	}
}

func TestUploadToUnknownFolder(t *testing.T) {
	f := newFileServiceFixture(t)
	parts := makeFileHeaders(t, []testUpload{{name: "a.txt", content: []byte("a")}})

	missing := uint(42)
	_, err := f.svc.Upload(context.Background(), 1, &missing, parts)
	requireAppError(t, err, http.StatusNotFound)
}

func TestUploadRemovesBlobWhenRecordInsertFails(t *testing.T) {
	f := newFileServiceFixture(t)
	f.files.createErr = errors.New("insert failed")

	parts := makeFileHeaders(t, []testUpload{{name: "a.txt", content: []byte("abc")}})
	_, err := f.svc.Upload(context.Background(), 1, nil, parts)
	requireAppError(t, err, http.StatusInternalServerError)

	entries, err := os.ReadDir(f.store.Abs("uploads/1"))
	if err == nil && len(entries) != 0 {
		t.Fatalf("expected orphan blob removed, found %d entries", len(entries))
	}
}

func TestGetFileReturnsEnrichedMetadata(t *testing.T) {
	f := newFileServiceFixture(t)
	f.files.files[1] = models.File{ID: 1, UserID: 1, OriginalName: "report.pdf", Filename: "abc.pdf", MimeType: "application/pdf", Size: 2048}

	view, err := f.svc.GetFile(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Icon != "fa-file-pdf" {
		t.Fatalf("expected pdf icon, got %q", view.Icon)
	}
	if view.SizeFormatted != "2 KB" {
		t.Fatalf("unexpected formatted size: %q", view.SizeFormatted)
	}

	_, err = f.svc.GetFile(context.Background(), 2, 1)
	requireAppError(t, err, http.StatusNotFound)
}

func TestGetDownloadInfoMissingBlobIsGone(t *testing.T) {
	f := newFileServiceFixture(t)
	f.files.files[1] = models.File{ID: 1, UserID: 1, Path: "uploads/1/vanished.bin", OriginalName: "v.bin"}

	_, err := f.svc.GetDownloadInfo(context.Background(), 1, 1)
	requireAppError(t, err, http.StatusGone)
}

func TestGetDownloadInfoForeignOwnerIsNotFound(t *testing.T) {
	f := newFileServiceFixture(t)
	f.files.files[1] = models.File{ID: 1, UserID: 2, Path: "uploads/2/x.bin"}

	_, err := f.svc.GetDownloadInfo(context.Background(), 1, 1)
	requireAppError(t, err, http.StatusNotFound)
}

func TestDeleteFileRemovesBlobLinksAndRow(t *testing.T) {
	f := newFileServiceFixture(t)

	parts := makeFileHeaders(t, []testUpload{{name: "gone.txt", content: []byte("bye")}})
	views, err := f.svc.Upload(context.Background(), 1, nil, parts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	file := views[0]
	f.links.links[1] = models.ShareLink{ID: 1, FileID: file.ID, UserID: 1, Token: "tok", IsActive: true}

	if err := f.svc.Delete(context.Background(), 1, file.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.store.Exists(file.Path) {
		t.Fatalf("expected blob removed")
	}
	if _, ok := f.files.files[file.ID]; ok {
		t.Fatalf("expected row removed")
	}
	if _, ok := f.links.links[1]; ok {
		t.Fatalf("expected share link removed")
	}
}

func TestDeleteFileWithMissingBlobStillRemovesRow(t *testing.T) {
	f := newFileServiceFixture(t)
	f.files.files[1] = models.File{ID: 1, UserID: 1, Path: "uploads/1/already-gone.bin"}

	if err := f.svc.Delete(context.Background(), 1, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.files.files[1]; ok {
		t.Fatalf("expected row removed")
	}
}

func TestDeleteFileForeignOwnerIsNotFound(t *testing.T) {
	f := newFileServiceFixture(t)
	f.files.files[1] = models.File{ID: 1, UserID: 2, Path: "uploads/2/x.bin"}

	err := f.svc.Delete(context.Background(), 1, 1)
	requireAppError(t, err, http.StatusNotFound)
}

func TestStorageUsedTracksUploadsAndDeletes(t *testing.T) {
	f := newFileServiceFixture(t)

	parts := makeFileHeaders(t, []testUpload{
		{name: "a.txt", content: bytes.Repeat([]byte("a"), 100)},
		{name: "b.txt", content: bytes.Repeat([]byte("b"), 50)},
	})
	views, err := f.svc.Upload(context.Background(), 1, nil, parts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	used, err := f.svc.StorageUsed(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != 150 {
		t.Fatalf("expected 150 bytes used, got %d", used)
	}

	if err := f.svc.Delete(context.Background(), 1, views[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	used, _ = f.svc.StorageUsed(context.Background(), 1)
	if used != 50 {
		t.Fatalf("expected 50 bytes used after delete, got %d", used)
	}
}

func TestListFilesScopedToFolderAndUser(t *testing.T) {
	f := newFileServiceFixture(t)
	folderID := uint(1)
	f.folders.folders[folderID] = models.Folder{ID: folderID, UserID: 1, Name: "Docs"}
	f.files.files[1] = models.File{ID: 1, UserID: 1, FolderID: &folderID, OriginalName: "in.txt"}
	f.files.files[2] = models.File{ID: 2, UserID: 1, OriginalName: "top.txt"}
	f.files.files[3] = models.File{ID: 3, UserID: 2, FolderID: &folderID, OriginalName: "other.txt"}

	inFolder, err := f.svc.ListFiles(context.Background(), 1, &folderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inFolder) != 1 || inFolder[0].OriginalName != "in.txt" {
		t.Fatalf("unexpected folder listing: %#v", inFolder)
	}

	topLevel, err := f.svc.ListFiles(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topLevel) != 1 || topLevel[0].OriginalName != "top.txt" {
		t.Fatalf("unexpected top-level listing: %#v", topLevel)
	}
}
