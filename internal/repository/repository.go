package repository

import "tabletop_web/internal/storage"

type Repositories struct {
	User      UserRepository
	Character CharacterRepository
	Room      RoomRepository
	Session   SessionRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Character: NewCharacterRepository(db),
		Room:      NewRoomRepository(db),
		Session:   NewSessionRepository(db),
	}
}
