// internal/services/image_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/openkb/product-kb/internal/apperr"
	"github.com/openkb/product-kb/internal/config"
	"github.com/openkb/product-kb/internal/database"
	"github.com/openkb/product-kb/internal/models"
	"github.com/openkb/product-kb/internal/tags"
)

const defaultFilename = "upload"

type ImageService struct {
	store *database.Store
	cfg   config.UploadConfig
}

func NewImageService(store *database.Store, cfg config.UploadConfig) *ImageService {
	return &ImageService{store: store, cfg: cfg}
}

// UploadFile is one file from a multipart upload, already read into memory.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageInfo is the listing representation of a stored image.
type ImageInfo struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// MediaURL returns the serving path for an image id.
func MediaURL(id int64) string {
	return fmt.Sprintf("/media/%d", id)
}

// Upload stores a batch of images under ownerID. If the item does not exist
// yet it is auto-created as a stub (name = displayName, or the id itself), so
// an upload never fails just because the item is missing. Per file: a content
// type not starting with "image/" is rejected, a payload over the size cap is
// rejected, an empty payload is skipped. Once the item holds the maximum
// image count the remaining files are dropped silently. Returns how many
// images were stored; if none were, the whole operation fails and nothing is
// persisted (including the stub).
func (s *ImageService) Upload(ownerID, displayName string, files []UploadFile) (int, error) {
	if strings.TrimSpace(ownerID) == "" {
		return 0, fmt.Errorf("owner id required: %w", apperr.ErrInvalidInput)
	}

	saved := 0
	err := s.store.Write(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, "id = ?", ownerID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("database error: %w", err)
			}
			name := strings.TrimSpace(displayName)
			if name == "" {
				name = ownerID
			}
			empty := ""
			item = models.Item{
				ID:       ownerID,
				Name:     name,
				Desc:     &empty,
				TagsJSON: tags.Encode(nil),
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create stub item: %w", err)
			}
		}

		var count int64
		if err := tx.Model(&models.Image{}).Where("item_id = ?", ownerID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count images: %w", err)
		}

		var firstErr error
		for _, f := range files {
			if len(f.Data) == 0 {
				continue
			}
			if !strings.HasPrefix(f.ContentType, "image/") {
				if firstErr == nil {
					firstErr = fmt.Errorf("content type %q is not an image: %w", f.ContentType, apperr.ErrInvalidInput)
				}
				continue
			}
			if int64(len(f.Data)) > s.cfg.MaxImageBytes {
				if firstErr == nil {
					firstErr = fmt.Errorf("file %q exceeds %d bytes: %w", f.Filename, s.cfg.MaxImageBytes, apperr.ErrTooLarge)
				}
				continue
			}
			if count >= int64(s.cfg.MaxImagesPerItem) {
				break
			}

			filename := strings.TrimSpace(f.Filename)
			if filename == "" {
				filename = defaultFilename
			}
			img := models.Image{
				ItemID:      ownerID,
				Filename:    filename,
				ContentType: f.ContentType,
				Data:        f.Data,
			}
			if err := tx.Create(&img).Error; err != nil {
				return fmt.Errorf("failed to store image: %w", err)
			}
			saved++
			count++
		}

		if saved == 0 {
			if firstErr != nil {
				return firstErr
			}
			return fmt.Errorf("no images saved: %w", apperr.ErrInvalidInput)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// List returns the item's images ordered by id ascending. A missing item
// yields an empty list, not an error.
func (s *ImageService) List(ownerID string) ([]ImageInfo, error) {
	var images []models.Image
	err := s.store.Read().
		Select("id", "item_id", "filename", "content_type").
		Where("item_id = ?", ownerID).
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	infos := make([]ImageInfo, 0, len(images))
	for _, img := range images {
		infos = append(infos, ImageInfo{
			ID:          img.ID,
			URL:         MediaURL(img.ID),
			Filename:    img.Filename,
			ContentType: img.ContentType,
		})
	}
	return infos, nil
}

// Serve returns the raw payload and content type for an image id.
func (s *ImageService) Serve(id int64) ([]byte, string, error) {
	var img models.Image
	if err := s.store.Read().First(&img, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("image %d: %w", id, apperr.ErrNotFound)
		}
		return nil, "", fmt.Errorf("database error: %w", err)
	}
	return img.Data, img.ContentType, nil
}

func (s *ImageService) Delete(id int64) error {
	return s.store.Write(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Image{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete image: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("image %d: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
}
