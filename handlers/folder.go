package handlers

import (
	"net/http"
	"strconv"

	"cloudnest/utils"

	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	ParentID *uint  `json:"parent_id"`
}

type RenameFolderRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// parseOptionalFolderID reads an optional query parameter holding a
// folder ID. Absent or empty means the top level (nil).
func parseOptionalFolderID(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid "+key)
		return nil, false
	}
	v := uint(id)
	return &v, true
}

func parsePathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func ListFolders(c *gin.Context) {
	userID := c.GetUint("user_id")
	parentID, ok := parseOptionalFolderID(c, "parent_id")
	if !ok {
		return
	}

	folders, err := getServices().Folder.ListFolders(c.Request.Context(), userID, parentID)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, folders)
}

func CreateFolder(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folder.CreateFolder(c.Request.Context(), userID, req.Name, req.ParentID)
	if respondServiceError(c, err) {
		return
	}

	utils.Created(c, folder)
}

func RenameFolder(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := parsePathID(c)
	if !ok {
		return
	}

	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folder.RenameFolder(c.Request.Context(), userID, folderID, req.Name)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, folder)
}

func DeleteFolder(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := parsePathID(c)
	if !ok {
		return
	}

	if respondServiceError(c, getServices().Folder.DeleteFolder(c.Request.Context(), userID, folderID)) {
		return
	}

	utils.SuccessWithMessage(c, "folder deleted", nil)
}
