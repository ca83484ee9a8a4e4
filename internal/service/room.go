package service

import (
	"errors"

	"tabletop_web/internal/models"
	"tabletop_web/internal/repository"
	"tabletop_web/internal/utils"
)

const (
	sessionCodeLength = 8
	// 開房代碼碰撞時的重試上限；64^8 的空間內碰撞機率極低，
	// 上限只是避免異常情況下的無窮迴圈
	sessionCodeRetries = 16
)

// RoomService 管理房間模板與開房/關房
type RoomService struct {
	roomRepo    repository.RoomRepository
	sessionRepo repository.SessionRepository
}

func NewRoomService(roomRepo repository.RoomRepository, sessionRepo repository.SessionRepository) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		sessionRepo: sessionRepo,
	}
}

func (s *RoomService) CreateRoom(ownerID uint, name, mapURL, dmNotes string) (*models.Room, error) {
	room := &models.Room{
		OwnerID: ownerID,
		Name:    name,
		MapURL:  mapURL,
		DMNotes: dmNotes,
	}
	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) GetRoom(ownerID, roomID uint) (*models.Room, error) {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return room, nil
}

func (s *RoomService) ListRooms(ownerID uint) ([]models.Room, error) {
	return s.roomRepo.FindByOwner(ownerID)
}

func (s *RoomService) UpdateRoom(ownerID uint, room *models.Room) error {
	existing, err := s.GetRoom(ownerID, room.ID)
	if err != nil {
		return err
	}
	// 開房代碼只透過 OpenSession/CloseSession 變動
	room.OwnerID = existing.OwnerID
	room.ActiveSessionID = existing.ActiveSessionID
	return s.roomRepo.Update(room)
}

func (s *RoomService) DeleteRoom(ownerID, roomID uint) error {
	room, err := s.GetRoom(ownerID, roomID)
	if err != nil {
		return err
	}
	if room.IsOpen() {
		if err := s.sessionRepo.DeleteSession(room.ActiveSessionID); err != nil {
			return err
		}
	}
	return s.roomRepo.Delete(roomID)
}

// GetRoomBySession 以開房代碼查詢進行中的房間，供加入/觀戰頁面使用
func (s *RoomService) GetRoomBySession(sessionID string) (*models.Room, error) {
	return s.roomRepo.FindByActiveSession(sessionID)
}

// OpenSession 為房間開啟一個新場次
// 產生唯一的開房代碼；代碼碰撞時重新產生，不會回報給用戶。
// 房間已有進行中的場次時直接回傳現有代碼。
func (s *RoomService) OpenSession(ownerID, roomID uint) (string, error) {
	room, err := s.GetRoom(ownerID, roomID)
	if err != nil {
		return "", err
	}
	if room.IsOpen() {
		return room.ActiveSessionID, nil
	}

	code, err := s.generateSessionCode()
	if err != nil {
		return "", err
	}

	room.ActiveSessionID = code
	if err := s.roomRepo.Update(room); err != nil {
		return "", err
	}
	return code, nil
}

func (s *RoomService) generateSessionCode() (string, error) {
	for i := 0; i < sessionCodeRetries; i++ {
		code := utils.RandomCode(sessionCodeLength)
		_, err := s.roomRepo.FindByActiveSession(code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrSessionCode
}
