package handlers

import (
	"fmt"
	"net/http"
	"time"

	"cloudnest/utils"

	"github.com/gin-gonic/gin"
)

type CreateShareLinkRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
	// RequirePassword is accepted for forward compatibility but not
	// enforced.
	RequirePassword bool `json:"require_password"`
}

func shareURL(c *gin.Context, token string) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/share/%s", scheme, c.Request.Host, token)
}

func CreateShareLink(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := parsePathID(c)
	if !ok {
		return
	}

	var req CreateShareLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		utils.Error(c, http.StatusBadRequest, "expires_at must be in the future")
		return
	}

	link, err := getServices().Share.Create(c.Request.Context(), userID, fileID, req.ExpiresAt)
	if respondServiceError(c, err) {
		return
	}

	utils.Created(c, gin.H{
		"link":      link,
		"share_url": shareURL(c, link.Token),
	})
}

func ListShareLinks(c *gin.Context) {
	userID := c.GetUint("user_id")

	links, err := getServices().Share.List(c.Request.Context(), userID)
	if respondServiceError(c, err) {
		return
	}

	type linkView struct {
		ID        uint       `json:"id"`
		FileID    uint       `json:"file_id"`
		Token     string     `json:"token"`
		ShareURL  string     `json:"share_url"`
		ExpiresAt *time.Time `json:"expires_at"`
		IsActive  bool       `json:"is_active"`
		CreatedAt time.Time  `json:"created_at"`
	}
	views := make([]linkView, 0, len(links))
	for _, l := range links {
		views = append(views, linkView{
			ID:        l.ID,
			FileID:    l.FileID,
			Token:     l.Token,
			ShareURL:  shareURL(c, l.Token),
			ExpiresAt: l.ExpiresAt,
			IsActive:  l.IsActive,
			CreatedAt: l.CreatedAt,
		})
	}

	utils.Success(c, views)
}

func DeactivateShareLink(c *gin.Context) {
	userID := c.GetUint("user_id")
	linkID, ok := parsePathID(c)
	if !ok {
		return
	}

	if respondServiceError(c, getServices().Share.Deactivate(c.Request.Context(), userID, linkID)) {
		return
	}

	utils.SuccessWithMessage(c, "share link deactivated", nil)
}

// ResolveShareLink serves a shared file to anonymous visitors. Expired
// links answer 410; revoked or unknown tokens answer 404.
func ResolveShareLink(c *gin.Context) {
	token := c.Param("token")

	out, err := getServices().Share.Resolve(c.Request.Context(), token)
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
