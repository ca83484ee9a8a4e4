package repository

import (
	"time"

	"tabletop_web/internal/models"
	"tabletop_web/internal/storage"
)

// SessionRepository 管理一個進行中場次的四類資料：
// token、先攻表、聊天紀錄與事件紀錄，全部以開房代碼為範圍
type SessionRepository interface {
	// token
	SaveToken(token *models.ParticipantToken) error
	FindToken(sessionID string, ownerID uint, characterName string) (*models.ParticipantToken, error)
	FindTokens(sessionID string) ([]models.ParticipantToken, error)
	FindTokenByUsername(sessionID, username, characterName string) (*models.ParticipantToken, error)
	DeleteToken(sessionID string, ownerID uint, characterName string) error

	// 先攻表
	SaveInitiative(entry *models.InitiativeEntry) error
	FindInitiative(sessionID string, ownerID uint, characterName string) (*models.InitiativeEntry, error)
	FindInitiatives(sessionID string) ([]models.InitiativeEntry, error)
	// FindTurnHolder 查詢目前輪到的角色，沒有人輪到時回傳 ErrNotFound
	FindTurnHolder(sessionID string) (*models.InitiativeEntry, error)
	DeleteInitiative(sessionID string, ownerID uint, characterName string) error

	// 聊天與事件紀錄
	AppendChat(chat *models.ChatMessage) error
	FindChats(sessionID string) ([]models.ChatMessage, error)
	// FindChatTimes 查詢某位用戶在場次中的發言時間，由舊到新
	FindChatTimes(sessionID string, ownerID uint) ([]time.Time, error)
	AppendLog(entry *models.EventLog) error
	FindLogs(sessionID string) ([]models.EventLog, error)

	// DeleteSession 清除場次的全部四類資料
	DeleteSession(sessionID string) error
}

type sessionRepository struct {
	db *storage.PostgresDB
}

func NewSessionRepository(db *storage.PostgresDB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) SaveToken(token *models.ParticipantToken) error {
	return r.db.Save(token).Error
}

func (r *sessionRepository) FindToken(sessionID string, ownerID uint, characterName string) (*models.ParticipantToken, error) {
	var token models.ParticipantToken
	err := r.db.Where("session_id = ? AND owner_id = ? AND character_name = ?",
		sessionID, ownerID, characterName).First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *sessionRepository) FindTokens(sessionID string) ([]models.ParticipantToken, error) {
	var tokens []models.ParticipantToken
	err := r.db.Where("session_id = ?", sessionID).Find(&tokens).Error
	return tokens, err
}

func (r *sessionRepository) FindTokenByUsername(sessionID, username, characterName string) (*models.ParticipantToken, error) {
	var token models.ParticipantToken
	err := r.db.Where("session_id = ? AND username = ? AND character_name = ?",
		sessionID, username, characterName).First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *sessionRepository) DeleteToken(sessionID string, ownerID uint, characterName string) error {
	return r.db.Unscoped().
		Where("session_id = ? AND owner_id = ? AND character_name = ?", sessionID, ownerID, characterName).
		Delete(&models.ParticipantToken{}).Error
}

func (r *sessionRepository) SaveInitiative(entry *models.InitiativeEntry) error {
	return r.db.Save(entry).Error
}

func (r *sessionRepository) FindInitiative(sessionID string, ownerID uint, characterName string) (*models.InitiativeEntry, error) {
	var entry models.InitiativeEntry
	err := r.db.Where("session_id = ? AND owner_id = ? AND character_name = ?",
		sessionID, ownerID, characterName).First(&entry).Error
	if err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (r *sessionRepository) FindInitiatives(sessionID string) ([]models.InitiativeEntry, error) {
	var entries []models.InitiativeEntry
	err := r.db.Where("session_id = ?", sessionID).Find(&entries).Error
	return entries, err
}

func (r *sessionRepository) FindTurnHolder(sessionID string) (*models.InitiativeEntry, error) {
	var entry models.InitiativeEntry
	err := r.db.Where("session_id = ? AND is_turn = ?", sessionID, true).First(&entry).Error
	if err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (r *sessionRepository) DeleteInitiative(sessionID string, ownerID uint, characterName string) error {
	return r.db.Unscoped().
		Where("session_id = ? AND owner_id = ? AND character_name = ?", sessionID, ownerID, characterName).
		Delete(&models.InitiativeEntry{}).Error
}

func (r *sessionRepository) AppendChat(chat *models.ChatMessage) error {
	return r.db.Create(chat).Error
}

func (r *sessionRepository) FindChats(sessionID string) ([]models.ChatMessage, error) {
	var chats []models.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).Order("timestamp asc").Find(&chats).Error
	return chats, err
}

func (r *sessionRepository) FindChatTimes(sessionID string, ownerID uint) ([]time.Time, error) {
	var times []time.Time
	err := r.db.Model(&models.ChatMessage{}).
		Where("session_id = ? AND owner_id = ?", sessionID, ownerID).
		Order("timestamp asc").
		Pluck("timestamp", &times).Error
	return times, err
}

func (r *sessionRepository) AppendLog(entry *models.EventLog) error {
	return r.db.Create(entry).Error
}

func (r *sessionRepository) FindLogs(sessionID string) ([]models.EventLog, error) {
	var logs []models.EventLog
	err := r.db.Where("session_id = ?", sessionID).Order("timestamp asc").Find(&logs).Error
	return logs, err
}

func (r *sessionRepository) DeleteSession(sessionID string) error {
	for _, model := range []interface{}{
		&models.ParticipantToken{},
		&models.InitiativeEntry{},
		&models.ChatMessage{},
		&models.EventLog{},
	} {
		if err := r.db.Unscoped().Where("session_id = ?", sessionID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
