// internal/handlers/image.go
package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openkb/product-kb/internal/config"
	"github.com/openkb/product-kb/internal/services"
	"github.com/openkb/product-kb/internal/utils"
)

type ImageHandler struct {
	imageService *services.ImageService
	maxBytes     int64
}

func NewImageHandler(imageService *services.ImageService, cfg config.UploadConfig) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		maxBytes:     cfg.MaxImageBytes,
	}
}

// POST /api/items/:id/images
//
// Multipart upload; files under the "images" field, optional "name" value
// used when the target item does not exist yet. Uploading to a missing item
// auto-creates a stub item rather than failing.
func (h *ImageHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "invalid multipart form", err.Error())
		return
	}

	headers := form.File["images"]
	displayName := c.PostForm("name")

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		// Read at most one byte past the cap so oversize files are detected
		// without buffering their full payload.
		data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
		f.Close()
		if err != nil {
			continue
		}
		files = append(files, services.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	added, err := h.imageService.Upload(c.Param("id"), displayName, files)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "added": added})
}

// GET /api/items/:id/images
func (h *ImageHandler) List(c *gin.Context) {
	images, err := h.imageService.List(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, images)
}

// GET /media/:image_id
func (h *ImageHandler) Serve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("image_id"), 10, 64)
	if err != nil {
		utils.NotFoundResponse(c, "image not found")
		return
	}

	data, contentType, err := h.imageService.Serve(id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// DELETE /api/images/:image_id
func (h *ImageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("image_id"), 10, 64)
	if err != nil {
		utils.NotFoundResponse(c, "image not found")
		return
	}

	if err := h.imageService.Delete(id); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
