package service

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"tabletop_web/internal/models"
	"tabletop_web/internal/repository"
	"tabletop_web/internal/utils"
	"tabletop_web/pkg/config"
)

// noChange 是前端表示「此欄位不變」的哨兵值
const noChange = "Null"

// Attendee 代表一個觸發戰鬥動作的參與者
// 由 WebSocket 的 Client 實作；測試中以假件代替
type Attendee interface {
	Identity() (userID uint, username string)
	Send(event *models.Event)
}

// Broadcaster 對房間廣播事件，由 WebSocketManager 實作
type Broadcaster interface {
	BroadcastToRoom(roomID string, event *models.Event)
	CloseRoom(roomID string)
}

// TokenResolver 查詢角色設定的 token 圖片，由 CharacterService 實作
type TokenResolver interface {
	TokenImage(ownerID uint, characterName string) string
}

// CombatService 是戰鬥頻道的協調器：接收客戶端動作、驗證後寫入
// 場次狀態，再將增量更新廣播給房間內的所有客戶端。
//
// 同一個房間內的動作以房間鎖序列化，確保「同時最多一個角色輪到
// 行動」與 token/先攻表一致這兩個不變量；不同房間可以並行處理。
// 所有寫入都採先讀取驗證、再寫入的順序，驗證失敗不會留下部分
// 寫入，錯誤只回報給觸發動作的客戶端。
type CombatService struct {
	cfg      config.CombatConfig
	guard    *SpamGuard
	hub      Broadcaster
	rooms    repository.RoomRepository
	users    repository.UserRepository
	tokens   TokenResolver
	sessions repository.SessionRepository

	now func() time.Time // 測試時可以固定時間

	mu    sync.Mutex
	locks map[string]*sync.Mutex // 開房代碼 -> 房間鎖
}

func NewCombatService(
	cfg config.CombatConfig,
	hub Broadcaster,
	rooms repository.RoomRepository,
	users repository.UserRepository,
	tokens TokenResolver,
	sessions repository.SessionRepository,
) *CombatService {
	return &CombatService{
		cfg:      cfg,
		guard:    NewSpamGuard(cfg.SpamWindowSeconds, cfg.SpamMaxMessages, cfg.SpamPenaltySeconds),
		hub:      hub,
		rooms:    rooms,
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// roomLock 取得房間的序列化鎖，沒有時建立
func (s *CombatService) roomLock(roomID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[roomID] = lock
	}
	return lock
}

func (s *CombatService) dropLock(roomID string) {
	s.mu.Lock()
	delete(s.locks, roomID)
	s.mu.Unlock()
}

// ValidateSession 確認開房代碼對應到一個進行中的場次
func (s *CombatService) ValidateSession(roomID string) (*models.Room, error) {
	if roomID == "" {
		return nil, ErrRoomNotFound
	}
	room, err := s.rooms.FindByActiveSession(roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *CombatService) username(userID uint) string {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return ""
	}
	return user.Username
}

func (s *CombatService) userByName(username string) (*models.User, error) {
	user, err := s.users.FindByUsername(username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *CombatService) appendLog(roomID string, userID uint, category, description string) error {
	return s.sessions.AppendLog(&models.EventLog{
		SessionID:   roomID,
		OwnerID:     userID,
		Category:    category,
		Description: description,
		Timestamp:   s.now(),
	})
}

func tokenData(token *models.ParticipantToken) map[string]any {
	return map[string]any{
		"username":        token.Username,
		"character_name":  token.CharacterName,
		"character_image": token.ImageURL,
		"top":             token.Top,
		"left":            token.Left,
		"width":           token.Width,
		"height":          token.Height,
		"is_turn":         token.IsTurn,
	}
}

// broadcastTokenRedraw 把場次目前的完整 token 地圖廣播給房間
func (s *CombatService) broadcastTokenRedraw(roomID string) error {
	tokens, err := s.sessions.FindTokens(roomID)
	if err != nil {
		return err
	}
	payload := make(map[string]any, len(tokens))
	for i := range tokens {
		payload[tokens[i].Key()] = tokenData(&tokens[i])
	}
	s.hub.BroadcastToRoom(roomID, models.NewEvent(models.EventRedrawTokens, payload))
	return nil
}

// CatchUp 把剛加入的客戶端補到房間的最新狀態：
// 先攻表、聊天紀錄、token 地圖，以及進行中的戰鬥（如果有）。
// 補狀態的事件只送給呼叫者本人；「用戶連線」的紀錄則廣播給全房間。
// 場次還沒有任何 token 時也能正常運作。
func (s *CombatService) CatchUp(caller Attendee, req *models.CombatRequest) error {
	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}
	userID, username := caller.Identity()

	initiatives, err := s.sessions.FindInitiatives(req.RoomID)
	if err != nil {
		return err
	}
	chats, err := s.sessions.FindChats(req.RoomID)
	if err != nil {
		return err
	}
	tokens, err := s.sessions.FindTokens(req.RoomID)
	if err != nil {
		return err
	}

	if err := s.appendLog(req.RoomID, userID, "Connection", fmt.Sprintf("User with id %d connected", userID)); err != nil {
		return err
	}
	s.hub.BroadcastToRoom(req.RoomID, models.NewLogEvent(fmt.Sprintf("%s Connected", username)))

	// 呼叫者已在場上的角色，補回他的角色選單
	for _, entry := range initiatives {
		if entry.OwnerID == userID {
			caller.Send(models.NewEvent(models.EventPopulateSelect, map[string]any{
				"character_name": entry.CharacterName,
				"username":       username,
			}))
		}
	}

	for _, entry := range initiatives {
		caller.Send(models.NewEvent(models.EventInitUpdate, map[string]any{
			"character_name": entry.CharacterName,
			"init_val":       entry.InitVal,
			"username":       s.username(entry.OwnerID),
		}))
	}
	caller.Send(models.NewLogEvent("Initiative List Received"))

	for _, chat := range chats {
		caller.Send(models.NewEvent(models.EventChatUpdate, map[string]any{
			"chat":           chat.Text,
			"character_name": chat.CharacterName,
		}))
	}
	caller.Send(models.NewLogEvent("Chat History Received"))

	if len(tokens) > 0 {
		if err := s.broadcastTokenRedraw(req.RoomID); err != nil {
			return err
		}
		caller.Send(models.NewLogEvent("Character Tokens Received"))
	}

	holder, err := s.sessions.FindTurnHolder(req.RoomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	caller.Send(models.NewLogEvent("Combat has already started; grabbing the latest information"))
	s.hub.BroadcastToRoom(req.RoomID, models.NewLogEvent("Rejoined Combat"))
	caller.Send(models.NewEvent(models.EventCombatConnect, map[string]any{
		"desc":            "Rejoined Combat",
		"first_turn_name": holder.CharacterName,
		"username":        s.username(holder.OwnerID),
	}))
	return nil
}

// AddCharacter 把呼叫者的一個角色加入場次
// 角色已有先攻值時沿用，否則以 0 建立；token 圖片取自角色卡，
// 沒有設定時使用預設圖。token 以預設大小與位置放上地圖。
func (s *CombatService) AddCharacter(caller Attendee, req *models.CombatRequest) error {
	if req.CharacterName == "" {
		return ErrMalformed
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}
	userID, username := caller.Identity()
	image := s.tokens.TokenImage(userID, req.CharacterName)
	return s.addParticipant(req.RoomID, userID, username, req.CharacterName, image)
}

// AddNPC 在場次中產生一個隨機命名的 NPC
// 名稱為 "NPC" 加上 8 位隨機英數字；與既有先攻表項目碰撞時重新產生
func (s *CombatService) AddNPC(caller Attendee, req *models.CombatRequest) error {
	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}
	userID, username := caller.Identity()

	var name string
	for i := 0; i < sessionCodeRetries; i++ {
		candidate := "NPC" + utils.RandomCode(8)
		_, err := s.sessions.FindInitiative(req.RoomID, userID, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			name = candidate
			break
		}
		if err != nil {
			return err
		}
	}
	if name == "" {
		return ErrSessionCode
	}

	image := s.cfg.DefaultTokenImage
	if len(s.cfg.NPCImages) > 0 {
		image = s.cfg.NPCImages[rand.Intn(len(s.cfg.NPCImages))]
	}
	return s.addParticipant(req.RoomID, userID, username, name, image)
}

// addParticipant 建立（或沿用）先攻表項目並放置 token，然後依序廣播
// 角色選單、先攻表與 token 地圖三個更新。呼叫端必須已持有房間鎖。
func (s *CombatService) addParticipant(roomID string, userID uint, username, characterName, image string) error {
	entry, err := s.sessions.FindInitiative(roomID, userID, characterName)
	if errors.Is(err, repository.ErrNotFound) {
		entry = &models.InitiativeEntry{
			SessionID:     roomID,
			OwnerID:       userID,
			CharacterName: characterName,
			InitVal:       0,
		}
		if err := s.sessions.SaveInitiative(entry); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	token, err := s.sessions.FindToken(roomID, userID, characterName)
	if errors.Is(err, repository.ErrNotFound) {
		token = &models.ParticipantToken{
			SessionID:     roomID,
			OwnerID:       userID,
			CharacterName: characterName,
		}
	} else if err != nil {
		return err
	}
	token.Username = username
	token.ImageURL = image
	token.Top = s.cfg.TokenTop
	token.Left = s.cfg.TokenLeft
	token.Width = s.cfg.TokenWidth
	token.Height = s.cfg.TokenHeight
	token.IsTurn = entry.IsTurn
	if err := s.sessions.SaveToken(token); err != nil {
		return err
	}

	s.hub.BroadcastToRoom(roomID, models.NewEvent(models.EventPopulateSelect, map[string]any{
		"character_name": characterName,
		"username":       username,
	}))
	s.hub.BroadcastToRoom(roomID, models.NewEvent(models.EventInitUpdate, map[string]any{
		"character_name": characterName,
		"init_val":       entry.InitVal,
		"username":       username,
	}))
	if err := s.broadcastTokenRedraw(roomID); err != nil {
		return err
	}
	log.Printf("user %s has added character %s to the battle", username, characterName)
	return nil
}

// RemoveCharacter 把角色從場次移除：token 與先攻表項目一併刪除
// 移除的剛好是輪到行動的角色時，請求會帶 next_character_name，
// 把回合先交給下一位再移除
func (s *CombatService) RemoveCharacter(caller Attendee, req *models.CombatRequest) error {
	if req.CharacterName == "" || req.Username == "" {
		return ErrMalformed
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}
	owner, err := s.userByName(req.Username)
	if err != nil {
		return err
	}

	// 先驗證要刪除的資料存在，再開始寫入
	if _, err := s.sessions.FindInitiative(req.RoomID, owner.ID, req.CharacterName); errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}
	if _, err := s.sessions.FindToken(req.RoomID, owner.ID, req.CharacterName); errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}

	if req.NextCharacterName != "" {
		nextOwner, err := s.userByName(req.NextUsername)
		if err != nil {
			return err
		}
		nextEntry, err := s.sessions.FindInitiative(req.RoomID, nextOwner.ID, req.NextCharacterName)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCharacterNotFound
		} else if err != nil {
			return err
		}
		nextToken, err := s.sessions.FindToken(req.RoomID, nextOwner.ID, req.NextCharacterName)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCharacterNotFound
		} else if err != nil {
			return err
		}
		nextEntry.IsTurn = true
		if err := s.sessions.SaveInitiative(nextEntry); err != nil {
			return err
		}
		nextToken.IsTurn = true
		if err := s.sessions.SaveToken(nextToken); err != nil {
			return err
		}
	}

	if err := s.sessions.DeleteToken(req.RoomID, owner.ID, req.CharacterName); err != nil {
		return err
	}
	if err := s.sessions.DeleteInitiative(req.RoomID, owner.ID, req.CharacterName); err != nil {
		return err
	}

	if err := s.broadcastTokenRedraw(req.RoomID); err != nil {
		return err
	}
	s.hub.BroadcastToRoom(req.RoomID, models.NewEvent(models.EventRemoved, map[string]any{
		"username":       req.Username,
		"character_name": req.CharacterName,
		"user_id":        owner.ID,
		"init_val":       req.InitVal,
	}))
	log.Printf("user %s has removed character %s from the battle", req.Username, req.CharacterName)
	return nil
}

// SetInitiative 設定呼叫者角色的先攻值
// 先攻值為空字串時沿用既有值、只重新廣播；角色名稱與先攻值
// 都是空的話視為格式錯誤的訊息，整個動作靜默略過
func (s *CombatService) SetInitiative(caller Attendee, req *models.CombatRequest) error {
	if req.CharacterName == "" && req.InitVal == "" {
		return nil
	}
	if req.CharacterName == "" {
		return ErrMalformed
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}
	userID, username := caller.Identity()

	entry, err := s.sessions.FindInitiative(req.RoomID, userID, req.CharacterName)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}

	value := entry.InitVal
	if req.InitVal != "" {
		value, err = strconv.Atoi(req.InitVal)
		if err != nil {
			return ErrMalformed
		}
	}

	entry.InitVal = value
	if err := s.sessions.SaveInitiative(entry); err != nil {
		return err
	}

	description := fmt.Sprintf("%s's initiative updated in room %s", req.CharacterName, req.RoomID)
	if err := s.appendLog(req.RoomID, userID, "Init", description); err != nil {
		return err
	}

	s.hub.BroadcastToRoom(req.RoomID, models.NewEvent(models.EventInitUpdate, map[string]any{
		"character_name": req.CharacterName,
		"init_val":       value,
		"username":       username,
	}))
	s.hub.BroadcastToRoom(req.RoomID, models.NewLogEvent(description))
	return nil
}

// StartCombat 開始戰鬥，選出第一個行動的角色並設定回合旗標
//
// 「第一個行動」沿用既有前端相容的排序：先攻值升冪、同值時
// 名稱降冪，取排序後的最後一筆（等同舊版 ORDER BY init_val,
// character_name DESC 再取最後一列）。也就是先攻值最高者先行動，
// 同值時名稱字典序較小者優先。
func (s *CombatService) StartCombat(caller Attendee, req *models.CombatRequest) error {
	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}
	userID, _ := caller.Identity()

	if _, err := s.sessions.FindTurnHolder(req.RoomID); err == nil {
		return ErrCombatActive
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	entries, err := s.sessions.FindInitiatives(req.RoomID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrEmptyInitiative
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].InitVal != entries[j].InitVal {
			return entries[i].InitVal < entries[j].InitVal
		}
		return entries[i].CharacterName > entries[j].CharacterName
	})
	first := entries[len(entries)-1]

	token, err := s.sessions.FindToken(req.RoomID, first.OwnerID, first.CharacterName)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}

	first.IsTurn = true
	if err := s.sessions.SaveInitiative(&first); err != nil {
		return err
	}
	token.IsTurn = true
	if err := s.sessions.SaveToken(token); err != nil {
		return err
	}

	if err := s.appendLog(req.RoomID, userID, "Combat", "Started Combat"); err != nil {
		return err
	}

	firstUsername := s.username(first.OwnerID)
	s.hub.BroadcastToRoom(req.RoomID, models.NewLogEvent("Started Combat"))
	s.hub.BroadcastToRoom(req.RoomID, models.NewEvent(models.EventCombatStarted, map[string]any{
		"desc":            "Started Combat",
		"first_turn_name": first.CharacterName,
		"username":        firstUsername,
	}))
	log.Printf("combat has started in room %s", req.RoomID)
	return nil
}

// EndTurn 結束一個角色的回合並把回合交給下一位
func (s *CombatService) EndTurn(caller Attendee, req *models.CombatRequest) error {
	if req.PreviousCharacterName == "" || req.NextCharacterName == "" ||
		req.PreviousUsername == "" || req.NextUsername == "" {
		return ErrMalformed
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}

	previousOwner, err := s.userByName(req.PreviousUsername)
	if err != nil {
		return err
	}
	nextOwner, err := s.userByName(req.NextUsername)
	if err != nil {
		return err
	}

	previousEntry, err := s.sessions.FindInitiative(req.RoomID, previousOwner.ID, req.PreviousCharacterName)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}
	nextEntry, err := s.sessions.FindInitiative(req.RoomID, nextOwner.ID, req.NextCharacterName)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}
	previousToken, err := s.sessions.FindToken(req.RoomID, previousOwner.ID, req.PreviousCharacterName)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}
	nextToken, err := s.sessions.FindToken(req.RoomID, nextOwner.ID, req.NextCharacterName)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}

	previousEntry.IsTurn = false
	nextEntry.IsTurn = true
	previousToken.IsTurn = false
	nextToken.IsTurn = true
	if err := s.sessions.SaveInitiative(previousEntry); err != nil {
		return err
	}
	if err := s.sessions.SaveInitiative(nextEntry); err != nil {
		return err
	}
	if err := s.sessions.SaveToken(previousToken); err != nil {
		return err
	}
	if err := s.sessions.SaveToken(nextToken); err != nil {
		return err
	}

	description := fmt.Sprintf("%s's Turn Ended", req.PreviousCharacterName)
	if err := s.appendLog(req.RoomID, previousOwner.ID, "Combat", description); err != nil {
		return err
	}

	s.hub.BroadcastToRoom(req.RoomID, models.NewLogEvent(req.Desc))
	s.hub.BroadcastToRoom(req.RoomID, models.NewEvent(models.EventTurnEnded, map[string]any{
		"desc":              req.Desc,
		"previous_username": req.PreviousUsername,
		"next_username":     req.NextUsername,
	}))
	return nil
}

// EndCombat 結束戰鬥，清掉目前輪到角色的回合旗標
func (s *CombatService) EndCombat(caller Attendee, req *models.CombatRequest) error {
	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}
	userID, _ := caller.Identity()

	holder, err := s.sessions.FindTurnHolder(req.RoomID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoTurnHolder
	} else if err != nil {
		return err
	}
	token, err := s.sessions.FindToken(req.RoomID, holder.OwnerID, holder.CharacterName)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}

	holder.IsTurn = false
	if err := s.sessions.SaveInitiative(holder); err != nil {
		return err
	}
	token.IsTurn = false
	if err := s.sessions.SaveToken(token); err != nil {
		return err
	}

	if err := s.appendLog(req.RoomID, userID, "Combat", "Ended Combat"); err != nil {
		return err
	}

	s.hub.BroadcastToRoom(req.RoomID, models.NewLogEvent("Ended Combat"))
	s.hub.BroadcastToRoom(req.RoomID, models.NewEvent(models.EventCombatEnded, map[string]any{
		"desc":              "Ended Combat",
		"current_turn_name": holder.CharacterName,
		"username":          s.username(holder.OwnerID),
	}))
	log.Printf("combat has ended in room %s", req.RoomID)
	return nil
}

// SendChat 處理一則聊天訊息
// 先以 SpamGuard 檢查發話者最近的發言頻率：被判定洗版時訊息
// 不會寫入，只留下一筆洗版紀錄，並單獨通知發話者禁言時間；
// 正常情況下訊息寫入聊天紀錄並廣播給房間。
func (s *CombatService) SendChat(caller Attendee, req *models.CombatRequest) error {
	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}
	userID, username := caller.Identity()
	now := s.now()

	history, err := s.sessions.FindChatTimes(req.RoomID, userID)
	if err != nil {
		return err
	}
	// 把這一則訊息也算進去：時間窗內的第六則就會被擋下
	history = append(history, now)

	if s.guard.IsSpamming(history, now) {
		description := fmt.Sprintf("%s was spamming the chat. They have been disabled for %d seconds",
			username, s.guard.PenaltySeconds)
		if err := s.appendLog(req.RoomID, userID, "Spam", description); err != nil {
			return err
		}
		caller.Send(models.NewEvent(models.EventLockout, map[string]any{
			"message": fmt.Sprintf("Sorry, you can only send %d messages per %d seconds. Try again in %d seconds.",
				s.guard.MaxMessages, s.guard.WindowSeconds, s.guard.PenaltySeconds),
			"spam_penalty": s.guard.PenaltySeconds,
		}))
		s.hub.BroadcastToRoom(req.RoomID, models.NewLogEvent(description))
		log.Printf("%s was spamming the chat in room %s", username, req.RoomID)
		return nil
	}

	if err := s.sessions.AppendChat(&models.ChatMessage{
		SessionID:     req.RoomID,
		OwnerID:       userID,
		CharacterName: username,
		Text:          req.Chat,
		Timestamp:     now,
	}); err != nil {
		return err
	}
	if err := s.appendLog(req.RoomID, userID, "Chat", username); err != nil {
		return err
	}
	s.hub.BroadcastToRoom(req.RoomID, models.NewEvent(models.EventChatUpdate, map[string]any{
		"chat":           req.Chat,
		"character_name": username,
	}))
	return nil
}

// UpdateToken 移動或縮放一個 token
// token 以 (username, character_name) 在場次內尋找，不信任客戶端
// 自行組出的儲存鍵。四個幾何欄位各自支援 "Null" 哨兵值表示不變。
func (s *CombatService) UpdateToken(caller Attendee, req *models.CombatRequest) error {
	if req.CharacterName == "" || req.Username == "" {
		return ErrMalformed
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.ValidateSession(req.RoomID); err != nil {
		return err
	}

	token, err := s.sessions.FindTokenByUsername(req.RoomID, req.Username, req.CharacterName)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCharacterNotFound
	} else if err != nil {
		return err
	}

	if req.NewTop != noChange {
		token.Top = req.NewTop
	}
	if req.NewLeft != noChange {
		token.Left = req.NewLeft
	}
	if req.NewWidth != noChange {
		token.Width = req.NewWidth
	}
	if req.NewHeight != noChange {
		token.Height = req.NewHeight
	}
	token.ImageURL = req.CharacterImage
	token.IsTurn = req.IsTurn
	if err := s.sessions.SaveToken(token); err != nil {
		return err
	}

	switch req.Desc {
	case "ChangeLocation":
		log.Printf("user %s has moved their character to X:%s, Y:%s", req.Username, req.NewLeft, req.NewTop)
		s.hub.BroadcastToRoom(req.RoomID, models.NewLogEvent(fmt.Sprintf("%s moved", req.CharacterName)))
	case "Resize":
		log.Printf("user %s has resized their character", req.Username)
	}

	return s.broadcastTokenRedraw(req.RoomID)
}

// EndSession 結束整個場次：清除 token、先攻表、聊天與事件紀錄，
// 清掉房間的開房代碼，廣播 room_ended 後把所有客戶端移出廣播群組
func (s *CombatService) EndSession(caller Attendee, req *models.CombatRequest) error {
	userID, _ := caller.Identity()
	return s.endSession(req.RoomID, userID, req.Desc)
}

// EndSessionByOwner 供 HTTP 關房端點使用，語意與 EndSession 相同
func (s *CombatService) EndSessionByOwner(roomID string, ownerID uint, desc string) error {
	return s.endSession(roomID, ownerID, desc)
}

func (s *CombatService) endSession(roomID string, callerID uint, desc string) error {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := s.ValidateSession(roomID)
	if err != nil {
		return err
	}
	if room.OwnerID != callerID {
		return ErrNotRoomOwner
	}

	if err := s.sessions.DeleteSession(roomID); err != nil {
		return err
	}
	room.ActiveSessionID = ""
	if err := s.rooms.Update(room); err != nil {
		return err
	}

	s.hub.BroadcastToRoom(roomID, models.NewEvent(models.EventRoomEnded, map[string]any{"desc": desc}))
	s.hub.CloseRoom(roomID)
	s.dropLock(roomID)
	log.Printf("room %s has closed", roomID)
	return nil
}
