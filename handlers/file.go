package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"cloudnest/utils"

	"github.com/gin-gonic/gin"
)

// ListFiles returns the folders and files directly under one folder
// (or the top level when folder_id is absent).
func ListFiles(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := parseOptionalFolderID(c, "folder_id")
	if !ok {
		return
	}

	svc := getServices()
	folders, err := svc.Folder.ListFolders(c.Request.Context(), userID, folderID)
	if respondServiceError(c, err) {
		return
	}
	files, err := svc.File.ListFiles(c.Request.Context(), userID, folderID)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, gin.H{
		"folders": folders,
		"files":   files,
	})
}

func GetFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := parsePathID(c)
	if !ok {
		return
	}

	file, err := getServices().File.GetFile(c.Request.Context(), userID, fileID)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, file)
}

// UploadFiles accepts one or more files in the "files" multipart field
// plus an optional folder_id form value.
func UploadFiles(c *gin.Context) {
	userID := c.GetUint("user_id")

	var folderID *uint
	if raw := c.PostForm("folder_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid folder_id")
			return
		}
		v := uint(id)
		folderID = &v
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "failed to read multipart form")
		return
	}
	parts := form.File["files"]
	if len(parts) == 0 {
		utils.Error(c, http.StatusBadRequest, "no files provided")
		return
	}

	files, err := getServices().File.Upload(c.Request.Context(), userID, folderID, parts)
	if respondServiceError(c, err) {
		return
	}

	utils.Created(c, gin.H{"files": files})
}

// DownloadFile streams the file content. With ?download=true the
// response carries an attachment disposition; otherwise it renders
// inline.
func DownloadFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := parsePathID(c)
	if !ok {
		return
	}

	out, err := getServices().File.GetDownloadInfo(c.Request.Context(), userID, fileID)
	if respondServiceError(c, err) {
		return
	}

	c.Header("Content-Type", out.ContentType)
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.DownloadName))
	}
	c.Header("Accept-Ranges", "bytes")
	http.ServeFile(c.Writer, c.Request, out.AbsPath)
}

func GetThumbnail(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := parsePathID(c)
	if !ok {
		return
	}

	out, err := getServices().File.GetThumbnailInfo(c.Request.Context(), userID, fileID)
	if respondServiceError(c, err) {
		return
	}

	c.Header("Content-Type", "image/jpeg")
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(out.AbsPath)
}

func DeleteFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := parsePathID(c)
	if !ok {
		return
	}

	if respondServiceError(c, getServices().File.Delete(c.Request.Context(), userID, fileID)) {
		return
	}

	utils.SuccessWithMessage(c, "file deleted", nil)
}
