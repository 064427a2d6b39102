package handler

import (
	"net/http"
	"strconv"
	"strings"

	"hotmess/internal/middleware"
	"hotmess/internal/session"
	"hotmess/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxMediaBytes = 25 << 20

type UploadHandler struct {
	sessions *session.Manager
	cloud    cloudinary.Client
	folder   string
}

// NewUploadHandler returns a handler for draft media. cloud may be nil when media is not configured.
func NewUploadHandler(sessions *session.Manager, cloud cloudinary.Client, folder string) *UploadHandler {
	return &UploadHandler{sessions: sessions, cloud: cloud, folder: folder}
}

// UploadDraftMedia uploads an image or video and attaches it to the open draft.
// Only tiers with media entitlement may attach.
func (h *UploadHandler) UploadDraftMedia(c *gin.Context) {
	userID := middleware.GetUserID(c)
	comp, ok := h.sessions.Get(userID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open draft"})
		return
	}
	if !comp.Entitlements().CanAttachMedia {
		c.JSON(http.StatusForbidden, gin.H{"error": "your membership can't attach media"})
		return
	}
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media uploads are off"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > maxMediaBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	contentType := file.Header.Get("Content-Type")
	isVideo := strings.HasPrefix(contentType, "video/")
	if !isVideo && !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "images and videos only"})
		return
	}
	folder := h.folder + "/" + strconv.FormatUint(uint64(userID), 10)
	publicID := "rn_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	var url string
	if isVideo {
		url, err = h.cloud.UploadVideo(c.Request.Context(), f, folder, publicID)
	} else {
		url, err = h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	if err := comp.SetMediaURL(url); err != nil {
		writeComposerError(c, comp, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "session": comp.Snapshot()})
}

// RemoveDraftMedia detaches media from the open draft.
func (h *UploadHandler) RemoveDraftMedia(c *gin.Context) {
	comp, ok := h.sessions.Get(middleware.GetUserID(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open draft"})
		return
	}
	if err := comp.SetMediaURL(""); err != nil {
		writeComposerError(c, comp, err)
		return
	}
	c.JSON(http.StatusOK, comp.Snapshot())
}
