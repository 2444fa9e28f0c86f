package course

import "gorm.io/gorm"

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	OwnerID      uint   `json:"owner_id" gorm:"index;not null"` // instructor or admin who owns the course
	PriceCents   uint   `json:"price_cents" gorm:"default:0"`   // 0 means free
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"` // draft until published
	IsDeleted    bool   `gorm:"default:false" json:"-"`
}

// Free reports whether the course requires no payment.
func (c *Course) Free() bool {
	return c.PriceCents == 0
}
