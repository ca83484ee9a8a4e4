package repository

import (
	"tabletop_web/internal/models"
	"tabletop_web/internal/storage"
)

type RoomRepository interface {
	Create(room *models.Room) error
	FindByID(id uint) (*models.Room, error)
	FindByOwner(ownerID uint) ([]models.Room, error)
	// FindByActiveSession 以開房代碼查詢進行中的房間
	// 回傳 ErrNotFound 表示代碼未被使用
	FindByActiveSession(sessionID string) (*models.Room, error)
	Update(room *models.Room) error
	Delete(id uint) error
}

type roomRepository struct {
	db *storage.PostgresDB
}

func NewRoomRepository(db *storage.PostgresDB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *roomRepository) FindByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) FindByOwner(ownerID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&rooms).Error
	return rooms, err
}

func (r *roomRepository) FindByActiveSession(sessionID string) (*models.Room, error) {
	var room models.Room
	err := r.db.Where("active_session_id = ?", sessionID).First(&room).Error
	if err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) Update(room *models.Room) error {
	return r.db.Save(room).Error
}

func (r *roomRepository) Delete(id uint) error {
	return r.db.Delete(&models.Room{}, id).Error
}
