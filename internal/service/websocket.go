package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tabletop_web/internal/models"
)

// Client 代表一個 WebSocket 客戶端連接
// RoomID 在客戶端送出 on_join 之前為空字串；
// 單純建立連線不代表加入任何房間
type Client struct {
	Conn     *websocket.Conn    // WebSocket 連接
	UserID   uint               // 用戶 ID
	Username string             // 用戶名稱
	RoomID   string             // 已加入的開房代碼，未加入時為空
	SendChan chan *models.Event // 事件發送通道，用於異步傳送事件

	mu     sync.Mutex
	closed bool
}

// Identity 回傳客戶端的用戶身分
func (c *Client) Identity() (uint, string) {
	return c.UserID, c.Username
}

// Send 將事件排入客戶端的發送隊列
// 隊列滿時直接丟棄，交由斷線偵測處理緩慢的客戶端。
// 廣播快照取得客戶端後、送出前，客戶端可能剛好斷線，
// 所以已關閉的客戶端也直接丟棄，不能寫入已關閉的通道
func (c *Client) Send(event *models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.SendChan <- event:
	default:
	}
}

// close 標記客戶端已斷線並關閉發送通道，重複呼叫是無操作
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.SendChan)
}

// DispatchFunc 處理客戶端送上來的戰鬥動作
type DispatchFunc func(client *Client, req *models.CombatRequest)

// WebSocketManager 管理所有的 WebSocket 連接和事件廣播
type WebSocketManager struct {
	clients    map[string]map[*Client]bool // 兩層 map: 開房代碼 -> client -> bool
	clientsMux sync.RWMutex                // 用於保護 clients map 的讀寫鎖
}

// NewWebSocketManager 創建並初始化新的 WebSocket 管理器
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]map[*Client]bool),
	}
}

// HandleConnection 處理新的 WebSocket 連接請求
// dispatch 負責把解析出來的動作交給戰鬥協調器
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn, userID uint, username string, dispatch DispatchFunc) {
	client := &Client{
		Conn:     conn,
		UserID:   userID,
		Username: username,
		SendChan: make(chan *models.Event, 256), // 設置緩衝大小為 256 的事件通道
	}

	// 確保連接關閉時清理資源
	defer func() {
		m.Leave(client)
		conn.Close()
		client.close()
	}()

	// 啟動讀寫處理
	go m.writePump(client)
	m.readPump(client, dispatch)
}

// readPump 持續監聽並處理從客戶端接收的動作
func (m *WebSocketManager) readPump(client *Client, dispatch DispatchFunc) {
	client.Conn.SetReadLimit(4096) // 設置最大消息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		// 解析接收到的動作
		var req models.CombatRequest
		if err := json.Unmarshal(message, &req); err != nil {
			log.Printf("message parse error: %v", err)
			continue
		}

		dispatch(client, &req)
	}
}

// writePump 處理向客戶端發送事件的邏輯
func (m *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// 獲取寫入器並發送事件
			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			// JSON 編碼
			eventBytes, err := json.Marshal(event)
			if err != nil {
				log.Printf("event encoding error: %v", err)
				continue
			}

			if _, err := w.Write(eventBytes); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Join 將客戶端加入房間的廣播群組
// 重複加入同一個房間是無操作，不會造成重複廣播；
// 若客戶端已在其他房間，會先離開原本的房間
func (m *WebSocketManager) Join(client *Client, roomID string) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if client.RoomID == roomID {
		return
	}
	if client.RoomID != "" {
		m.removeLocked(client)
	}

	if m.clients[roomID] == nil {
		m.clients[roomID] = make(map[*Client]bool)
	}
	m.clients[roomID][client] = true
	client.RoomID = roomID
}

// Leave 將客戶端移出目前的廣播群組
// 斷線只會移除廣播成員資格，不會更動場次的任何狀態
func (m *WebSocketManager) Leave(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()
	m.removeLocked(client)
}

func (m *WebSocketManager) removeLocked(client *Client) {
	if client.RoomID == "" {
		return
	}
	if clients, ok := m.clients[client.RoomID]; ok {
		delete(clients, client)
		// 如果房間空了，刪除房間
		if len(clients) == 0 {
			delete(m.clients, client.RoomID)
		}
	}
	client.RoomID = ""
}

// IsMember 回報客戶端是否在指定房間的廣播群組內
// 分派動作前的成員檢查要透過這裡，不能直接讀 Client.RoomID：
// 關房與換房會在其他 goroutine 上修改它
func (m *WebSocketManager) IsMember(client *Client, roomID string) bool {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return roomID != "" && m.clients[roomID][client]
}

// BroadcastToRoom 向房間內的所有客戶端廣播事件
func (m *WebSocketManager) BroadcastToRoom(roomID string, event *models.Event) {
	m.clientsMux.RLock()
	clients := make([]*Client, 0, len(m.clients[roomID]))
	for client := range m.clients[roomID] {
		clients = append(clients, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range clients {
		client.Send(event)
	}
}

// CloseRoom 將房間內的所有客戶端移出廣播群組
// 在場次結束（end_room）後呼叫，群組隨之捨棄
func (m *WebSocketManager) CloseRoom(roomID string) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	for client := range m.clients[roomID] {
		client.RoomID = ""
	}
	delete(m.clients, roomID)
}

// RoomClients 獲取指定房間的在線客戶端數量
func (m *WebSocketManager) RoomClients(roomID string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[roomID])
}
