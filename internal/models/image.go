// internal/models/image.go
package models

import "time"

// Image is a binary attachment owned by an Item. Ids are assigned by the
// storage engine and increase monotonically, which is also the listing order.
// Deleting the owning item removes its images.
type Image struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ItemID      string    `json:"item_id" gorm:"size:128;not null;index"`
	Filename    string    `json:"filename" gorm:"size:255"`
	ContentType string    `json:"content_type" gorm:"size:100;not null"`
	Data        []byte    `json:"-" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Image) TableName() string {
	return "images"
}
