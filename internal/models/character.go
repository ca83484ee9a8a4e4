package models

import (
	"gorm.io/gorm"
)

// Character 表示用戶建立的角色卡
// 同一個用戶的角色名稱必須唯一，但不同用戶可以使用相同名稱
type Character struct {
	gorm.Model
	OwnerID    uint   `gorm:"uniqueIndex:idx_owner_character;not null" json:"owner_id"`
	Name       string `gorm:"uniqueIndex:idx_owner_character;not null" json:"name"`
	Race       string `json:"race"`
	Subrace    string `json:"subrace"`
	Class      string `json:"class"`
	Subclass   string `json:"subclass"`
	Level      int    `json:"level"`
	Speed      int    `json:"speed"`
	Hitpoints  int    `json:"hitpoints"`
	TokenImage string `json:"token_image"` // 戰鬥地圖上使用的 token 圖片 URL，可為空
}
