package models

import (
	"gorm.io/gorm"
)

// Room 表示一個戰鬥地圖房間的模板
// ActiveSessionID 在房間被開啟成即時戰鬥時填入隨機代碼，
// 關閉時清空。每個房間同時最多只有一個進行中的場次。
type Room struct {
	gorm.Model
	OwnerID         uint   `gorm:"index;not null" json:"owner_id"` // 房主（DM）
	Name            string `gorm:"not null" json:"name"`
	MapURL          string `json:"map_url"`  // 戰鬥地圖的圖片 URL
	DMNotes         string `json:"dm_notes"` // DM 的私人筆記
	ActiveSessionID string `gorm:"index" json:"active_session_id"` // 空字串表示未開啟
}

// IsOpen 回報房間是否有進行中的場次
func (r *Room) IsOpen() bool {
	return r.ActiveSessionID != ""
}
