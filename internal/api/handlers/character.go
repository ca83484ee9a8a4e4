package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tabletop_web/internal/models"
	"tabletop_web/internal/service"
)

// CharacterHandler 處理角色卡相關的請求
type CharacterHandler struct {
	characterService *service.CharacterService
}

// NewCharacterHandler 創建一個新的 CharacterHandler 實例
func NewCharacterHandler(characterService *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{characterService: characterService}
}

// CharacterInput 定義建立/編輯角色的請求結構
type CharacterInput struct {
	Name       string `json:"name" binding:"required"`
	Race       string `json:"race"`
	Subrace    string `json:"subrace"`
	Class      string `json:"class"`
	Subclass   string `json:"subclass"`
	Level      int    `json:"level"`
	Speed      int    `json:"speed"`
	Hitpoints  int    `json:"hitpoints"`
	TokenImage string `json:"token_image"`
}

// ListCharacters 回傳用戶的所有角色
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	userID, _ := c.Get("userID")

	characters, err := h.characterService.GetCharacters(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法搜尋角色"})
		return
	}

	c.JSON(http.StatusOK, characters)
}

// CreateCharacter 處理建立角色的請求
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var input CharacterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	character := models.Character{
		OwnerID:    userID.(uint),
		Name:       input.Name,
		Race:       input.Race,
		Subrace:    input.Subrace,
		Class:      input.Class,
		Subclass:   input.Subclass,
		Level:      input.Level,
		Speed:      input.Speed,
		Hitpoints:  input.Hitpoints,
		TokenImage: input.TokenImage,
	}

	if err := h.characterService.CreateCharacter(&character); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "創建角色失敗"})
		return
	}

	c.JSON(http.StatusCreated, character)
}

// GetCharacter 回傳指定的角色
func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	characterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的角色 ID"})
		return
	}

	userID, _ := c.Get("userID")
	character, err := h.characterService.GetCharacter(userID.(uint), uint(characterID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "角色不存在"})
		return
	}

	c.JSON(http.StatusOK, character)
}

// UpdateCharacter 處理編輯角色的請求
func (h *CharacterHandler) UpdateCharacter(c *gin.Context) {
	characterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的角色 ID"})
		return
	}

	var input CharacterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	character := models.Character{
		Name:       input.Name,
		Race:       input.Race,
		Subrace:    input.Subrace,
		Class:      input.Class,
		Subclass:   input.Subclass,
		Level:      input.Level,
		Speed:      input.Speed,
		Hitpoints:  input.Hitpoints,
		TokenImage: input.TokenImage,
	}
	character.ID = uint(characterID)

	if err := h.characterService.UpdateCharacter(userID.(uint), &character); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "編輯角色失敗"})
		return
	}

	c.JSON(http.StatusOK, character)
}

// DeleteCharacter 處理刪除角色的請求
func (h *CharacterHandler) DeleteCharacter(c *gin.Context) {
	characterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的角色 ID"})
		return
	}

	userID, _ := c.Get("userID")
	if err := h.characterService.DeleteCharacter(userID.(uint), uint(characterID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "角色不存在"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "角色已刪除"})
}
