// internal/models/item.go
package models

// Item is a product record in the knowledge base. The id is caller-supplied
// and immutable once created. Tags live in a single encoded text column; see
// the tags package for the encoding rules.
type Item struct {
	ID       string  `json:"id" gorm:"primaryKey;size:128"`
	Name     string  `json:"name" gorm:"size:255;not null"`
	Desc     *string `json:"desc" gorm:"type:text"`
	TagsJSON string  `json:"-" gorm:"column:tags_json;type:text"`

	// Relationships
	Images []Image `json:"images,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

func (Item) TableName() string {
	return "items"
}

// Description returns the stored description with NULL coalesced to "".
func (i *Item) Description() string {
	if i.Desc == nil {
		return ""
	}
	return *i.Desc
}
