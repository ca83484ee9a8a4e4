package service

import (
	"time"
)

// SpamGuard 判定用戶是否在短時間內洗版
// 門檻值從設定注入，測試可以直接建構不同參數的 SpamGuard
type SpamGuard struct {
	WindowSeconds  int // 判定的時間窗（秒）
	MaxMessages    int // 時間窗內允許的訊息數，超過（不含）才算洗版
	PenaltySeconds int // 禁言秒數，只用於通知內容，冷卻由前端執行
}

func NewSpamGuard(windowSeconds, maxMessages, penaltySeconds int) *SpamGuard {
	return &SpamGuard{
		WindowSeconds:  windowSeconds,
		MaxMessages:    maxMessages,
		PenaltySeconds: penaltySeconds,
	}
}

// IsSpamming 檢查用戶在房間內的發言時間紀錄（由舊到新）
// 從最新的訊息往回數落在時間窗內的則數，碰到第一則超出
// 時間窗的訊息就停止。訊息依寫入順序排列，更舊的訊息不可能
// 回到時間窗內，提早停止不會漏算。
// 回傳 true 表示時間窗內的訊息數超過上限
func (g *SpamGuard) IsSpamming(history []time.Time, now time.Time) bool {
	window := time.Duration(g.WindowSeconds) * time.Second
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if now.Sub(history[i]) < window {
			count++
		} else {
			break
		}
	}
	return count > g.MaxMessages
}
