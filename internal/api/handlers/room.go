package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tabletop_web/internal/models"
	"tabletop_web/internal/service"
)

// RoomHandler 處理戰鬥房間模板相關的請求
type RoomHandler struct {
	roomService   *service.RoomService
	combatService *service.CombatService
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService, combatService *service.CombatService) *RoomHandler {
	return &RoomHandler{
		roomService:   roomService,
		combatService: combatService,
	}
}

// RoomInput 定義建立/編輯房間的請求結構
type RoomInput struct {
	Name    string `json:"name" binding:"required"`
	MapURL  string `json:"map_url"`
	DMNotes string `json:"dm_notes"`
}

// ListRooms 回傳用戶建立的所有房間
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID, _ := c.Get("userID")

	rooms, err := h.roomService.ListRooms(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法搜尋房間"})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// CreateRoom 處理創建新房間的請求
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input RoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	room, err := h.roomService.CreateRoom(userID.(uint), input.Name, input.MapURL, input.DMNotes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "創建房間失敗"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// GetRoom 處理獲取房間訊息的請求
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的房間ID"})
		return
	}

	userID, _ := c.Get("userID")
	room, err := h.roomService.GetRoom(userID.(uint), uint(roomID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// UpdateRoom 處理編輯房間的請求
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的房間ID"})
		return
	}

	var input RoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	room := models.Room{
		Name:    input.Name,
		MapURL:  input.MapURL,
		DMNotes: input.DMNotes,
	}
	room.ID = uint(roomID)

	if err := h.roomService.UpdateRoom(userID.(uint), &room); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "編輯房間失敗"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// DeleteRoom 處理刪除房間的請求
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的房間ID"})
		return
	}

	userID, _ := c.Get("userID")
	if err := h.roomService.DeleteRoom(userID.(uint), uint(roomID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "房間已刪除"})
}

// OpenSession 為房間開啟一個場次並回傳開房代碼
func (h *RoomHandler) OpenSession(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的房間ID"})
		return
	}

	userID, _ := c.Get("userID")
	code, err := h.roomService.OpenSession(userID.(uint), uint(roomID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "開啟房間失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": code})
}

// CloseSession 關閉房間目前的場次
// 與 WebSocket 的 end_room 動作語意相同，提供給 HTTP 端使用
func (h *RoomHandler) CloseSession(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的房間ID"})
		return
	}

	userID, _ := c.Get("userID")
	room, err := h.roomService.GetRoom(userID.(uint), uint(roomID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}
	if !room.IsOpen() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "房間沒有進行中的場次"})
		return
	}

	if err := h.combatService.EndSessionByOwner(room.ActiveSessionID, userID.(uint), "Room Closed"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "房間已關閉"})
}

// GetSession 以開房代碼查詢場次資訊，供加入與觀戰頁面使用
func (h *RoomHandler) GetSession(c *gin.Context) {
	room, err := h.roomService.GetRoomBySession(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room_id":  room.ActiveSessionID,
		"name":     room.Name,
		"map_url":  room.MapURL,
		"owner_id": room.OwnerID,
	})
}
