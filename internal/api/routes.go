package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tabletop_web/internal/api/handlers"
	"tabletop_web/internal/middleware"
	"tabletop_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.UserService)
	characterHandler := handlers.NewCharacterHandler(services.CharacterService)
	roomHandler := handlers.NewRoomHandler(services.RoomService, services.CombatService)
	wsHandler := handlers.NewCombatSocketHandler(services.WebSocketManager, services.CombatService)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 角色卡相關
		characters := authorized.Group("/characters")
		{
			characters.GET("", characterHandler.ListCharacters)
			characters.POST("", characterHandler.CreateCharacter)
			characters.GET("/:id", characterHandler.GetCharacter)
			characters.PUT("/:id", characterHandler.UpdateCharacter)
			characters.DELETE("/:id", characterHandler.DeleteCharacter)
		}

		// 戰鬥房間相關
		rooms := authorized.Group("/rooms")
		{
			// 基本操作
			rooms.GET("", roomHandler.ListRooms)          // 獲取房間列表
			rooms.POST("", roomHandler.CreateRoom)        // 創建房間
			rooms.GET("/:id", roomHandler.GetRoom)        // 獲取房間信息
			rooms.PUT("/:id", roomHandler.UpdateRoom)     // 編輯房間
			rooms.DELETE("/:id", roomHandler.DeleteRoom)  // 刪除房間

			// 開房與關房
			rooms.POST("/:id/open", roomHandler.OpenSession)   // 產生開房代碼
			rooms.POST("/:id/close", roomHandler.CloseSession) // 關閉進行中的場次
		}

		// 以開房代碼查詢場次（加入/觀戰頁面用）
		authorized.GET("/sessions/:code", roomHandler.GetSession)

		// 戰鬥頻道的 WebSocket 連接點
		authorized.GET("/combat/ws", wsHandler.HandleWebSocket)
	}
}
