// internal/services/item_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/openkb/product-kb/internal/apperr"
	"github.com/openkb/product-kb/internal/database"
	"github.com/openkb/product-kb/internal/models"
	"github.com/openkb/product-kb/internal/tags"
	"github.com/openkb/product-kb/internal/utils"
)

const searchLimitMax = 100

type ItemService struct {
	store *database.Store
}

func NewItemService(store *database.Store) *ItemService {
	return &ItemService{store: store}
}

// ItemView is the wire representation of an item. Images are URLs in image-id
// order.
type ItemView struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Desc   string   `json:"desc"`
	Tags   []string `json:"tags"`
	Images []string `json:"images"`
}

type CreateItemRequest struct {
	ID   string   `json:"id" validate:"required,max=128"`
	Name string   `json:"name" validate:"required,max=255"`
	Desc string   `json:"desc"`
	Tags []string `json:"tags"`
}

// UpdateItemRequest carries a partial patch. Pointer fields distinguish
// "absent" (nil, field untouched) from an explicit value, including explicit
// empty strings and empty tag lists.
type UpdateItemRequest struct {
	Name *string   `json:"name"`
	Desc *string   `json:"desc"`
	Tags *[]string `json:"tags"`
}

func (s *ItemService) Create(req *CreateItemRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%v: %w", utils.FirstValidationMessage(err), apperr.ErrInvalidInput)
	}

	return s.store.Write(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Item{}).Where("id = ?", req.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check item id: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("item %q: %w", req.ID, apperr.ErrConflict)
		}

		desc := req.Desc
		item := &models.Item{
			ID:       req.ID,
			Name:     req.Name,
			Desc:     &desc,
			TagsJSON: tags.Encode(req.Tags),
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	})
}

func (s *ItemService) Get(id string) (*ItemView, error) {
	var item models.Item
	if err := s.store.Read().First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %q: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	views, err := s.buildViews([]models.Item{item})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ItemService) Update(id string, req *UpdateItemRequest) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return fmt.Errorf("name must not be empty: %w", apperr.ErrInvalidInput)
	}

	return s.store.Write(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("item %q: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		updates := make(map[string]interface{})
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Desc != nil {
			updates["desc"] = *req.Desc
		}
		if req.Tags != nil {
			updates["tags_json"] = tags.Encode(*req.Tags)
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
}

// Delete removes the item and all images it owns.
func (s *ItemService) Delete(id string) error {
	return s.store.Write(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("item %q: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("item_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return fmt.Errorf("failed to delete item images: %w", err)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return nil
	})
}

// Search filters items by a case-insensitive substring over id, name, desc
// and the raw encoded tag column. Matching against the encoded form means the
// encoding's punctuation (quotes, brackets, commas) is searchable; that is
// the documented behavior, not an accident. Results are ordered by id
// ascending and total is independent of limit/offset.
func (s *ItemService) Search(query string, limit, offset int) (int64, []ItemView, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > searchLimitMax {
		limit = searchLimitMax
	}
	if offset < 0 {
		offset = 0
	}

	q := s.store.Read().Model(&models.Item{})
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q = q.Where(
			`LOWER(id) LIKE ? OR LOWER(name) LIKE ? OR LOWER(COALESCE("desc", '')) LIKE ? OR LOWER(COALESCE(tags_json, '')) LIKE ?`,
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to count items: %w", err)
	}

	var items []models.Item
	if err := q.Order("id ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	views, err := s.buildViews(items)
	if err != nil {
		return 0, nil, err
	}
	return total, views, nil
}

// buildViews decodes tags and resolves image URLs for a page of items with a
// single image query.
func (s *ItemService) buildViews(items []models.Item) ([]ItemView, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	urls := make(map[string][]string, len(items))
	if len(ids) > 0 {
		var images []models.Image
		err := s.store.Read().
			Select("id", "item_id").
			Where("item_id IN ?", ids).
			Order("id ASC").
			Find(&images).Error
		if err != nil {
			return nil, fmt.Errorf("failed to fetch item images: %w", err)
		}
		for _, img := range images {
			urls[img.ItemID] = append(urls[img.ItemID], MediaURL(img.ID))
		}
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		tagList := tags.Decode(item.TagsJSON)
		if tagList == nil {
			tagList = []string{}
		}
		imageURLs := urls[item.ID]
		if imageURLs == nil {
			imageURLs = []string{}
		}
		views = append(views, ItemView{
			ID:     item.ID,
			Name:   item.Name,
			Desc:   item.Description(),
			Tags:   tagList,
			Images: imageURLs,
		})
	}
	return views, nil
}
