package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 表示查詢的資料不存在
// gorm 的 ErrRecordNotFound 在這一層統一轉換，
// 上層不需要認識 gorm 的錯誤型別
var ErrNotFound = errors.New("repository: record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
