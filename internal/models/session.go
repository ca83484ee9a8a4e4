package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TokenKey 組出前端地圖使用的複合鍵 "ownerID_characterName"
func TokenKey(ownerID uint, characterName string) string {
	return fmt.Sprintf("%d_%s", ownerID, characterName)
}

// 這個檔案裡的四個模型都以 SessionID（開房時產生的隨機代碼）為範圍。
// 代碼每次開房都重新產生、永不重複使用，所以不會有上一場殘留的
// 資料佔用同一個儲存位置的問題。場次結束時四張表一併清除。

// ParticipantToken 表示戰鬥地圖上的一個角色 token
// 位置與大小沿用前端的 CSS 百分比字串（例如 "10%"）
type ParticipantToken struct {
	gorm.Model
	SessionID     string `gorm:"uniqueIndex:idx_session_token;not null" json:"session_id"`
	OwnerID       uint   `gorm:"uniqueIndex:idx_session_token" json:"owner_id"`
	CharacterName string `gorm:"uniqueIndex:idx_session_token" json:"character_name"`
	Username      string `json:"username"`
	ImageURL      string `json:"character_image"`
	Top           string `json:"top"`
	Left          string `json:"left"`
	Width         string `json:"width"`
	Height        string `json:"height"`
	IsTurn        bool   `json:"is_turn"`
}

// Key 回傳 token 在前端地圖上使用的複合鍵
func (t *ParticipantToken) Key() string {
	return TokenKey(t.OwnerID, t.CharacterName)
}

// InitiativeEntry 表示先攻表中的一列
// 不變量：同一場次中最多只有一列 IsTurn 為 true，
// 且必須與 ParticipantToken 的 IsTurn 一致
type InitiativeEntry struct {
	gorm.Model
	SessionID     string `gorm:"uniqueIndex:idx_session_initiative;not null" json:"session_id"`
	OwnerID       uint   `gorm:"uniqueIndex:idx_session_initiative" json:"owner_id"`
	CharacterName string `gorm:"uniqueIndex:idx_session_initiative" json:"character_name"`
	InitVal       int    `json:"init_val"`
	IsTurn        bool   `json:"is_turn"`
}

// ChatMessage 表示場次中的一則聊天訊息，只增不改
type ChatMessage struct {
	gorm.Model
	SessionID     string    `gorm:"index;not null" json:"session_id"`
	OwnerID       uint      `json:"owner_id"`
	CharacterName string    `json:"character_name"`
	Text          string    `json:"chat"`
	Timestamp     time.Time `json:"timestamp"`
}

// EventLog 表示場次事件紀錄中的一列，只增不改
// Category 對應原始紀錄的類型："Chat"、"Init"、"Combat"、"Spam"、"Connection"
type EventLog struct {
	gorm.Model
	SessionID   string    `gorm:"index;not null" json:"session_id"`
	OwnerID     uint      `json:"owner_id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
