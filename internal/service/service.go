package service

import (
	"tabletop_web/internal/repository"
	"tabletop_web/pkg/config"
)

type Services struct {
	UserService      *UserService
	CharacterService *CharacterService
	RoomService      *RoomService
	CombatService    *CombatService
	WebSocketManager *WebSocketManager
}

func NewServices(repos *repository.Repositories, cfg config.CombatConfig) *Services {
	wsManager := NewWebSocketManager()

	userService := NewUserService(repos.User)
	characterService := NewCharacterService(repos.Character, cfg.DefaultTokenImage)
	roomService := NewRoomService(repos.Room, repos.Session)
	combatService := NewCombatService(cfg, wsManager, repos.Room, repos.User, characterService, repos.Session)

	return &Services{
		UserService:      userService,
		CharacterService: characterService,
		RoomService:      roomService,
		CombatService:    combatService,
		WebSocketManager: wsManager,
	}
}
