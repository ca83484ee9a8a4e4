package service

import (
	"tabletop_web/internal/models"
	"tabletop_web/internal/repository"
)

// CharacterService 管理角色卡的建立與查詢
type CharacterService struct {
	characterRepo repository.CharacterRepository
	defaultToken  string
}

func NewCharacterService(characterRepo repository.CharacterRepository, defaultToken string) *CharacterService {
	return &CharacterService{
		characterRepo: characterRepo,
		defaultToken:  defaultToken,
	}
}

func (s *CharacterService) CreateCharacter(character *models.Character) error {
	return s.characterRepo.Create(character)
}

func (s *CharacterService) GetCharacters(ownerID uint) ([]models.Character, error) {
	return s.characterRepo.FindByOwner(ownerID)
}

func (s *CharacterService) GetCharacter(ownerID, id uint) (*models.Character, error) {
	character, err := s.characterRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if character.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return character, nil
}

func (s *CharacterService) UpdateCharacter(ownerID uint, character *models.Character) error {
	existing, err := s.GetCharacter(ownerID, character.ID)
	if err != nil {
		return err
	}
	character.OwnerID = existing.OwnerID
	return s.characterRepo.Update(character)
}

func (s *CharacterService) DeleteCharacter(ownerID, id uint) error {
	if _, err := s.GetCharacter(ownerID, id); err != nil {
		return err
	}
	return s.characterRepo.Delete(id)
}

// TokenImage 查詢角色設定的 token 圖片
// 角色不存在或沒有設定圖片時回傳預設圖，不回報錯誤
func (s *CharacterService) TokenImage(ownerID uint, characterName string) string {
	character, err := s.characterRepo.FindByOwnerAndName(ownerID, characterName)
	if err != nil || character.TokenImage == "" {
		return s.defaultToken
	}
	return character.TokenImage
}
