package service

import "errors"

// 戰鬥頻道的錯誤分類
// 這些錯誤只會回報給觸發動作的客戶端，不會廣播，也不會造成部分寫入
var (
	// ErrRoomNotFound 表示指定的開房代碼沒有對應的進行中場次
	ErrRoomNotFound = errors.New("找不到進行中的房間")
	// ErrCharacterNotFound 表示場次中沒有指定的角色
	ErrCharacterNotFound = errors.New("場次中找不到該角色")
	// ErrUserNotFound 表示指定的用戶不存在
	ErrUserNotFound = errors.New("找不到該用戶")
	// ErrNoTurnHolder 表示目前沒有任何角色輪到行動
	ErrNoTurnHolder = errors.New("目前沒有進行中的回合")
	// ErrCombatActive 表示戰鬥已經開始，不能重複開始
	ErrCombatActive = errors.New("戰鬥已經開始")
	// ErrEmptyInitiative 表示先攻表是空的，無法開始戰鬥
	ErrEmptyInitiative = errors.New("先攻表是空的")
	// ErrMalformed 表示動作缺少必要欄位
	ErrMalformed = errors.New("動作內容不完整")
	// ErrNotJoined 表示客戶端尚未加入房間的廣播群組
	ErrNotJoined = errors.New("尚未加入房間")
	// ErrNotRoomOwner 表示只有房主可以執行的動作被其他人觸發
	ErrNotRoomOwner = errors.New("只有房主可以執行此動作")
	// ErrSessionCode 表示開房代碼重試多次後仍然碰撞
	ErrSessionCode = errors.New("無法產生唯一的開房代碼")
)
