package course

import "gorm.io/gorm"

// Lesson represents a single lesson within a module
type Lesson struct {
	gorm.Model
	ModuleID   uint   `json:"module_id" gorm:"index;not null"`
	Title      string `json:"title"`
	Content    string `json:"content" gorm:"type:text"`
	VideoURL   string `json:"video_url"`
	OrderIndex int    `json:"order_index" gorm:"default:0"` // Lesson order in module, advisory
	IsDeleted  bool   `gorm:"default:false" json:"-"`
}
