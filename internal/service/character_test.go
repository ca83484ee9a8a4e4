package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabletop_web/internal/models"
	"tabletop_web/internal/repository"
)

func newCharacterService() (*CharacterService, *fakeCharacterRepo) {
	repo := &fakeCharacterRepo{}
	return NewCharacterService(repo, "default.png"), repo
}

func TestCharacterOwnership(t *testing.T) {
	svc, _ := newCharacterService()
	character := &models.Character{OwnerID: 1, Name: "Wiz", Class: "Wizard", Level: 3}
	require.NoError(t, svc.CreateCharacter(character))

	found, err := svc.GetCharacter(1, character.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wiz", found.Name)

	// 別人的角色查不到
	_, err = svc.GetCharacter(2, character.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteCharacter(2, character.ID), repository.ErrNotFound)
}

func TestUpdateCharacter_KeepsOwner(t *testing.T) {
	svc, repo := newCharacterService()
	character := &models.Character{OwnerID: 1, Name: "Wiz", Level: 3}
	require.NoError(t, svc.CreateCharacter(character))

	update := &models.Character{OwnerID: 99, Name: "Wiz", Level: 4}
	update.ID = character.ID
	require.NoError(t, svc.UpdateCharacter(1, update))

	assert.Equal(t, uint(1), repo.characters[0].OwnerID, "擁有者不可被更新請求竄改")
	assert.Equal(t, 4, repo.characters[0].Level)
}

func TestTokenImage(t *testing.T) {
	svc, _ := newCharacterService()
	require.NoError(t, svc.CreateCharacter(&models.Character{OwnerID: 1, Name: "Wiz", TokenImage: "wiz.png"}))
	require.NoError(t, svc.CreateCharacter(&models.Character{OwnerID: 1, Name: "Rog"}))

	assert.Equal(t, "wiz.png", svc.TokenImage(1, "Wiz"))
	assert.Equal(t, "default.png", svc.TokenImage(1, "Rog"), "沒有設定圖片時用預設圖")
	assert.Equal(t, "default.png", svc.TokenImage(1, "Ghost"), "角色不存在時用預設圖")
}
