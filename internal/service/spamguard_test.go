package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timesWithin(now time.Time, offsets ...time.Duration) []time.Time {
	history := make([]time.Time, 0, len(offsets))
	for _, offset := range offsets {
		history = append(history, now.Add(-offset))
	}
	return history
}

func TestSpamGuard_SixMessagesInWindow(t *testing.T) {
	guard := NewSpamGuard(10, 5, 30)
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	// 時間窗內六則訊息，超過上限
	history := timesWithin(now,
		9*time.Second, 8*time.Second, 5*time.Second,
		3*time.Second, 2*time.Second, 1*time.Second)

	assert.True(t, guard.IsSpamming(history, now), "六則訊息應判定為洗版")
}

func TestSpamGuard_FiveMessagesInWindow(t *testing.T) {
	guard := NewSpamGuard(10, 5, 30)
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	// 剛好五則，不超過上限
	history := timesWithin(now,
		9*time.Second, 7*time.Second, 5*time.Second,
		3*time.Second, 1*time.Second)

	assert.False(t, guard.IsSpamming(history, now), "五則訊息不應判定為洗版")
}

func TestSpamGuard_OldMessagesDoNotCount(t *testing.T) {
	guard := NewSpamGuard(10, 5, 30)
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	// 八則訊息，但只有三則落在時間窗內
	history := timesWithin(now,
		5*time.Minute, 4*time.Minute, 3*time.Minute,
		2*time.Minute, 60*time.Second,
		8*time.Second, 4*time.Second, 2*time.Second)

	assert.False(t, guard.IsSpamming(history, now))
}

func TestSpamGuard_EmptyHistory(t *testing.T) {
	guard := NewSpamGuard(10, 5, 30)

	assert.False(t, guard.IsSpamming(nil, time.Now()))
}

func TestSpamGuard_StopsAtFirstOldMessage(t *testing.T) {
	guard := NewSpamGuard(10, 2, 30)
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	// 紀錄依寫入順序排列，掃到第一則超出時間窗的訊息就停止；
	// 排在它之前的訊息即使碰巧落在時間窗內也不再計算
	history := []time.Time{
		now.Add(-2 * time.Second), // 亂序的殘留資料，不會被掃到
		now.Add(-30 * time.Second),
		now.Add(-3 * time.Second),
		now.Add(-1 * time.Second),
	}

	assert.False(t, guard.IsSpamming(history, now))
}

func TestSpamGuard_ExactWindowBoundary(t *testing.T) {
	guard := NewSpamGuard(10, 0, 30)
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	// 差距剛好等於時間窗的訊息不算在內
	boundary := []time.Time{now.Add(-10 * time.Second)}
	assert.False(t, guard.IsSpamming(boundary, now))

	inside := []time.Time{now.Add(-10*time.Second + time.Millisecond)}
	assert.True(t, guard.IsSpamming(inside, now))
}
