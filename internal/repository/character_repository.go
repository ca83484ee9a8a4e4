package repository

import (
	"tabletop_web/internal/models"
	"tabletop_web/internal/storage"
)

type CharacterRepository interface {
	Create(character *models.Character) error
	FindByID(id uint) (*models.Character, error)
	FindByOwner(ownerID uint) ([]models.Character, error)
	FindByOwnerAndName(ownerID uint, name string) (*models.Character, error)
	Update(character *models.Character) error
	Delete(id uint) error
}

type characterRepository struct {
	db *storage.PostgresDB
}

func NewCharacterRepository(db *storage.PostgresDB) CharacterRepository {
	return &characterRepository{db: db}
}

func (r *characterRepository) Create(character *models.Character) error {
	return r.db.Create(character).Error
}

func (r *characterRepository) FindByID(id uint) (*models.Character, error) {
	var character models.Character
	if err := r.db.First(&character, id).Error; err != nil {
		return nil, translate(err)
	}
	return &character, nil
}

func (r *characterRepository) FindByOwner(ownerID uint) ([]models.Character, error) {
	var characters []models.Character
	err := r.db.Where("owner_id = ?", ownerID).Order("name asc").Find(&characters).Error
	return characters, err
}

func (r *characterRepository) FindByOwnerAndName(ownerID uint, name string) (*models.Character, error) {
	var character models.Character
	err := r.db.Where("owner_id = ? AND name = ?", ownerID, name).First(&character).Error
	if err != nil {
		return nil, translate(err)
	}
	return &character, nil
}

func (r *characterRepository) Update(character *models.Character) error {
	return r.db.Save(character).Error
}

func (r *characterRepository) Delete(id uint) error {
	return r.db.Delete(&models.Character{}, id).Error
}
