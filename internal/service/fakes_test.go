package service

import (
	"time"

	"tabletop_web/internal/models"
	"tabletop_web/internal/repository"
)

// 測試用的記憶體替身，行為對齊 gorm 實作：
// Find 回傳副本、Save 依 ID 更新或建立、Delete 為硬刪除

type fakeUserRepo struct {
	users  []models.User
	nextID uint
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.nextID++
	user.ID = r.nextID
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*models.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	for i := range r.users {
		if r.users[i].Username == username {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeCharacterRepo struct {
	characters []models.Character
	nextID     uint
}

func (r *fakeCharacterRepo) Create(character *models.Character) error {
	r.nextID++
	character.ID = r.nextID
	r.characters = append(r.characters, *character)
	return nil
}

func (r *fakeCharacterRepo) FindByID(id uint) (*models.Character, error) {
	for i := range r.characters {
		if r.characters[i].ID == id {
			character := r.characters[i]
			return &character, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCharacterRepo) FindByOwner(ownerID uint) ([]models.Character, error) {
	var out []models.Character
	for i := range r.characters {
		if r.characters[i].OwnerID == ownerID {
			out = append(out, r.characters[i])
		}
	}
	return out, nil
}

func (r *fakeCharacterRepo) FindByOwnerAndName(ownerID uint, name string) (*models.Character, error) {
	for i := range r.characters {
		if r.characters[i].OwnerID == ownerID && r.characters[i].Name == name {
			character := r.characters[i]
			return &character, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCharacterRepo) Update(character *models.Character) error {
	for i := range r.characters {
		if r.characters[i].ID == character.ID {
			r.characters[i] = *character
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCharacterRepo) Delete(id uint) error {
	for i := range r.characters {
		if r.characters[i].ID == id {
			r.characters = append(r.characters[:i], r.characters[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeRoomRepo struct {
	rooms  []models.Room
	nextID uint
}

func (r *fakeRoomRepo) Create(room *models.Room) error {
	r.nextID++
	room.ID = r.nextID
	r.rooms = append(r.rooms, *room)
	return nil
}

func (r *fakeRoomRepo) FindByID(id uint) (*models.Room, error) {
	for i := range r.rooms {
		if r.rooms[i].ID == id {
			room := r.rooms[i]
			return &room, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRoomRepo) FindByOwner(ownerID uint) ([]models.Room, error) {
	var out []models.Room
	for i := range r.rooms {
		if r.rooms[i].OwnerID == ownerID {
			out = append(out, r.rooms[i])
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) FindByActiveSession(sessionID string) (*models.Room, error) {
	for i := range r.rooms {
		if r.rooms[i].ActiveSessionID == sessionID {
			room := r.rooms[i]
			return &room, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRoomRepo) Update(room *models.Room) error {
	for i := range r.rooms {
		if r.rooms[i].ID == room.ID {
			r.rooms[i] = *room
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRoomRepo) Delete(id uint) error {
	for i := range r.rooms {
		if r.rooms[i].ID == id {
			r.rooms = append(r.rooms[:i], r.rooms[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeSessionRepo struct {
	tokens      []models.ParticipantToken
	initiatives []models.InitiativeEntry
	chats       []models.ChatMessage
	logs        []models.EventLog
	nextID      uint
}

func (r *fakeSessionRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeSessionRepo) SaveToken(token *models.ParticipantToken) error {
	if token.ID == 0 {
		token.ID = r.id()
		r.tokens = append(r.tokens, *token)
		return nil
	}
	for i := range r.tokens {
		if r.tokens[i].ID == token.ID {
			r.tokens[i] = *token
			return nil
		}
	}
	r.tokens = append(r.tokens, *token)
	return nil
}

func (r *fakeSessionRepo) FindToken(sessionID string, ownerID uint, characterName string) (*models.ParticipantToken, error) {
	for i := range r.tokens {
		t := r.tokens[i]
		if t.SessionID == sessionID && t.OwnerID == ownerID && t.CharacterName == characterName {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionRepo) FindTokens(sessionID string) ([]models.ParticipantToken, error) {
	var out []models.ParticipantToken
	for i := range r.tokens {
		if r.tokens[i].SessionID == sessionID {
			out = append(out, r.tokens[i])
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindTokenByUsername(sessionID, username, characterName string) (*models.ParticipantToken, error) {
	for i := range r.tokens {
		t := r.tokens[i]
		if t.SessionID == sessionID && t.Username == username && t.CharacterName == characterName {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionRepo) DeleteToken(sessionID string, ownerID uint, characterName string) error {
	for i := range r.tokens {
		t := r.tokens[i]
		if t.SessionID == sessionID && t.OwnerID == ownerID && t.CharacterName == characterName {
			r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeSessionRepo) SaveInitiative(entry *models.InitiativeEntry) error {
	if entry.ID == 0 {
		entry.ID = r.id()
		r.initiatives = append(r.initiatives, *entry)
		return nil
	}
	for i := range r.initiatives {
		if r.initiatives[i].ID == entry.ID {
			r.initiatives[i] = *entry
			return nil
		}
	}
	r.initiatives = append(r.initiatives, *entry)
	return nil
}

func (r *fakeSessionRepo) FindInitiative(sessionID string, ownerID uint, characterName string) (*models.InitiativeEntry, error) {
	for i := range r.initiatives {
		e := r.initiatives[i]
		if e.SessionID == sessionID && e.OwnerID == ownerID && e.CharacterName == characterName {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionRepo) FindInitiatives(sessionID string) ([]models.InitiativeEntry, error) {
	var out []models.InitiativeEntry
	for i := range r.initiatives {
		if r.initiatives[i].SessionID == sessionID {
			out = append(out, r.initiatives[i])
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindTurnHolder(sessionID string) (*models.InitiativeEntry, error) {
	for i := range r.initiatives {
		e := r.initiatives[i]
		if e.SessionID == sessionID && e.IsTurn {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionRepo) DeleteInitiative(sessionID string, ownerID uint, characterName string) error {
	for i := range r.initiatives {
		e := r.initiatives[i]
		if e.SessionID == sessionID && e.OwnerID == ownerID && e.CharacterName == characterName {
			r.initiatives = append(r.initiatives[:i], r.initiatives[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeSessionRepo) AppendChat(chat *models.ChatMessage) error {
	chat.ID = r.id()
	r.chats = append(r.chats, *chat)
	return nil
}

func (r *fakeSessionRepo) FindChats(sessionID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for i := range r.chats {
		if r.chats[i].SessionID == sessionID {
			out = append(out, r.chats[i])
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindChatTimes(sessionID string, ownerID uint) ([]time.Time, error) {
	var out []time.Time
	for i := range r.chats {
		if r.chats[i].SessionID == sessionID && r.chats[i].OwnerID == ownerID {
			out = append(out, r.chats[i].Timestamp)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) AppendLog(entry *models.EventLog) error {
	entry.ID = r.id()
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *fakeSessionRepo) FindLogs(sessionID string) ([]models.EventLog, error) {
	var out []models.EventLog
	for i := range r.logs {
		if r.logs[i].SessionID == sessionID {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) DeleteSession(sessionID string) error {
	var tokens []models.ParticipantToken
	for i := range r.tokens {
		if r.tokens[i].SessionID != sessionID {
			tokens = append(tokens, r.tokens[i])
		}
	}
	r.tokens = tokens

	var initiatives []models.InitiativeEntry
	for i := range r.initiatives {
		if r.initiatives[i].SessionID != sessionID {
			initiatives = append(initiatives, r.initiatives[i])
		}
	}
	r.initiatives = initiatives

	var chats []models.ChatMessage
	for i := range r.chats {
		if r.chats[i].SessionID != sessionID {
			chats = append(chats, r.chats[i])
		}
	}
	r.chats = chats

	var logs []models.EventLog
	for i := range r.logs {
		if r.logs[i].SessionID != sessionID {
			logs = append(logs, r.logs[i])
		}
	}
	r.logs = logs
	return nil
}

// categoryLogs 回傳某一類事件紀錄的描述，方便斷言
func (r *fakeSessionRepo) categoryLogs(sessionID, category string) []string {
	var out []string
	for i := range r.logs {
		if r.logs[i].SessionID == sessionID && r.logs[i].Category == category {
			out = append(out, r.logs[i].Description)
		}
	}
	return out
}

type recordedEvent struct {
	roomID string
	event  *models.Event
}

// fakeHub 記錄所有廣播與關房呼叫
type fakeHub struct {
	broadcasts []recordedEvent
	closed     []string
}

func (h *fakeHub) BroadcastToRoom(roomID string, event *models.Event) {
	h.broadcasts = append(h.broadcasts, recordedEvent{roomID: roomID, event: event})
}

func (h *fakeHub) CloseRoom(roomID string) {
	h.closed = append(h.closed, roomID)
}

func (h *fakeHub) eventsOfType(eventType string) []*models.Event {
	var out []*models.Event
	for _, rec := range h.broadcasts {
		if rec.event.Type == eventType {
			out = append(out, rec.event)
		}
	}
	return out
}

func (h *fakeHub) lastOfType(eventType string) *models.Event {
	events := h.eventsOfType(eventType)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

// fakeAttendee 記錄單播給它的事件
type fakeAttendee struct {
	id     uint
	name   string
	events []*models.Event
}

func (a *fakeAttendee) Identity() (uint, string) { return a.id, a.name }

func (a *fakeAttendee) Send(event *models.Event) { a.events = append(a.events, event) }

func (a *fakeAttendee) receivedOfType(eventType string) []*models.Event {
	var out []*models.Event
	for _, event := range a.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fakeTokenResolver struct {
	images   map[string]string
	fallback string
}

func (f *fakeTokenResolver) TokenImage(ownerID uint, characterName string) string {
	if image, ok := f.images[models.TokenKey(ownerID, characterName)]; ok {
		return image
	}
	return f.fallback
}
