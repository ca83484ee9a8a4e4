package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tabletop_web/internal/models"
	"tabletop_web/internal/service"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// CombatSocketHandler 處理戰鬥頻道的 WebSocket 連接，
// 並把客戶端送上來的動作分派給戰鬥協調器
type CombatSocketHandler struct {
	wsManager     *service.WebSocketManager
	combatService *service.CombatService
}

// NewCombatSocketHandler 創建一個新的 CombatSocketHandler 實例
func NewCombatSocketHandler(wsManager *service.WebSocketManager, combatService *service.CombatService) *CombatSocketHandler {
	return &CombatSocketHandler{
		wsManager:     wsManager,
		combatService: combatService,
	}
}

// HandleWebSocket 處理 WebSocket 連接請求
func (h *CombatSocketHandler) HandleWebSocket(c *gin.Context) {
	// 從上下文中獲取用戶身分
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	username, _ := c.Get("username")

	// 升級 HTTP 連接為 WebSocket 連接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "升級WebSocket失敗"})
		return
	}

	// 處理客戶端連接；連線本身不代表加入任何房間，
	// 客戶端必須先送出 on_join 才會開始收到廣播
	h.wsManager.HandleConnection(conn, userID.(uint), username.(string), h.dispatch)
}

// dispatch 把一個戰鬥動作送到對應的協調器操作
// 操作回傳的錯誤只以 error 事件回給觸發的客戶端，不會廣播，
// 也不會影響其他房間或其他進行中的動作
func (h *CombatSocketHandler) dispatch(client *service.Client, req *models.CombatRequest) {
	var err error

	switch req.Type {
	case models.ActionJoin:
		err = h.join(client, req)
	default:
		// 其他動作都要求客戶端已加入該房間的廣播群組
		if !h.wsManager.IsMember(client, req.RoomID) {
			err = service.ErrNotJoined
			break
		}
		switch req.Type {
		case models.ActionJoinCatchUp:
			err = h.combatService.CatchUp(client, req)
		case models.ActionAddCharacter:
			err = h.combatService.AddCharacter(client, req)
		case models.ActionAddNPC:
			err = h.combatService.AddNPC(client, req)
		case models.ActionRemove:
			err = h.combatService.RemoveCharacter(client, req)
		case models.ActionSetInit:
			err = h.combatService.SetInitiative(client, req)
		case models.ActionSendChat:
			err = h.combatService.SendChat(client, req)
		case models.ActionStartCombat:
			err = h.combatService.StartCombat(client, req)
		case models.ActionEndTurn:
			err = h.combatService.EndTurn(client, req)
		case models.ActionEndCombat:
			err = h.combatService.EndCombat(client, req)
		case models.ActionEndRoom:
			err = h.combatService.EndSession(client, req)
		case models.ActionUpdateToken:
			err = h.combatService.UpdateToken(client, req)
		default:
			log.Printf("unknown combat action %q from user %d", req.Type, client.UserID)
			return
		}
	}

	if err != nil {
		log.Printf("combat action %s failed in room %s: %v", req.Type, req.RoomID, err)
		client.Send(models.NewErrorEvent(err))
	}
}

// join 把客戶端加入房間的廣播群組
// 先確認開房代碼有效，重複加入是無操作
func (h *CombatSocketHandler) join(client *service.Client, req *models.CombatRequest) error {
	if _, err := h.combatService.ValidateSession(req.RoomID); err != nil {
		return err
	}
	h.wsManager.Join(client, req.RoomID)
	client.Send(models.NewEvent(models.EventJoined, map[string]any{"desc": "Joined room"}))
	return nil
}
