package database

import (
	"errors"
	"fmt"

	"TrendAgent/pkg/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("记录不存在")
	ErrDuplicate         = errors.New("记录已存在")
	ErrInvalid           = errors.New("参数不合法")
	ErrInvalidTransition = errors.New("非法的状态迁移")
	ErrCycle             = model.ErrCycle
)

// wrap 为错误加上操作描述，并把gorm错误转换为本包的哨兵错误
func wrap(action string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %v", action, ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
