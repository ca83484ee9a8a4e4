package models

// 戰鬥頻道上往來的訊息。客戶端送上來的動作統一解析成 CombatRequest，
// 伺服器推播給客戶端的事件統一包成 Event。

// 客戶端送往伺服器的動作類型
const (
	ActionJoin         = "on_join"
	ActionJoinCatchUp  = "join_actions"
	ActionAddCharacter = "add_character"
	ActionAddNPC       = "add_npc"
	ActionRemove       = "remove_character"
	ActionSetInit      = "set_initiative"
	ActionSendChat     = "send_chat"
	ActionStartCombat  = "start_combat"
	ActionEndTurn      = "end_turn"
	ActionEndCombat    = "end_combat"
	ActionEndRoom      = "end_room"
	ActionUpdateToken  = "character_icon_update_database"
)

// 伺服器推播給客戶端的事件類型
const (
	EventJoined         = "joined"
	EventPopulateSelect = "populate_select_with_character_names"
	EventInitUpdate     = "initiative_update"
	EventChatUpdate     = "chat_update"
	EventLogUpdate      = "log_update"
	EventCombatStarted  = "combat_started"
	EventCombatEnded    = "combat_ended"
	EventTurnEnded      = "turn_ended"
	EventRoomEnded      = "room_ended"
	EventRedrawTokens   = "redraw_character_tokens_on_map"
	EventRemoved        = "removed_character"
	EventLockout        = "lockout_spammer"
	EventCombatConnect  = "combat_connect"
	EventError          = "error"
)

// CombatRequest 是客戶端在戰鬥頻道送出的動作
// 不同動作只會用到其中一部分欄位，欄位名稱沿用前端既有的訊息格式
type CombatRequest struct {
	Type          string `json:"type"`
	RoomID        string `json:"room_id"`
	CharacterName string `json:"character_name"`
	Username      string `json:"username"` // 角色擁有者的用戶名，移除角色與更新 token 時使用
	InitVal       string `json:"init_val"` // 空字串表示不更新，沿用既有值
	Chat          string `json:"chat"`
	Desc          string `json:"desc"`

	// token 更新使用的欄位；"Null" 表示該欄位不變
	CharacterImage string `json:"character_image"`
	NewTop         string `json:"new_top"`
	NewLeft        string `json:"new_left"`
	NewWidth       string `json:"new_width"`
	NewHeight      string `json:"new_height"`
	IsTurn         bool   `json:"is_turn"`

	// 換手與移除角色使用的欄位
	PreviousCharacterName string `json:"previous_character_name"`
	PreviousUsername      string `json:"previous_username"`
	NextCharacterName     string `json:"next_character_name"`
	NextUsername          string `json:"next_username"`
}

// Event 是伺服器推播給客戶端的事件
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// NewEvent 建立一個推播事件
func NewEvent(eventType string, data map[string]any) *Event {
	return &Event{Type: eventType, Data: data}
}

// NewLogEvent 建立一個事件紀錄更新的推播
func NewLogEvent(desc string) *Event {
	return NewEvent(EventLogUpdate, map[string]any{"desc": desc})
}

// NewErrorEvent 建立一個只回傳給觸發者的錯誤通知
func NewErrorEvent(err error) *Event {
	return NewEvent(EventError, map[string]any{"error": err.Error()})
}
