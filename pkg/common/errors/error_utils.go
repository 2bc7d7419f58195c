package errors

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// 存储层哨兵错误，由各 DAO 实现返回，service 层再翻译为业务错误
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrDatabaseInternal = errors.New("database internal error")
)

// region 错误处理工具函数

// WrapGormError 将底层数据库错误转变为业务可识别错误
// 参数说明：
//   - rawErr: 原始GORM错误
//
// 返回值：
//   - error: 标准化错误类型
func WrapGormError(rawErr error) error {
	if rawErr == nil {
		return nil
	}

	// 处理预定义的GORM错误
	switch {
	case errors.Is(rawErr, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(rawErr, gorm.ErrDuplicatedKey):
		return ErrDuplicateEntry
	}

	// 处理MySQL驱动错误
	var mysqlErr *mysql.MySQLError
	if errors.As(rawErr, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062: // 唯一性约束冲突
			return ErrDuplicateEntry
		case 1045, 1049, 1146: // 数据库连接、表不存在等错误
			return fmt.Errorf("%w: %s", ErrDatabaseInternal, mysqlErr.Message)
		}
	}

	if errors.Is(rawErr, gorm.ErrInvalidDB) ||
		errors.Is(rawErr, gorm.ErrInvalidTransaction) {
		return fmt.Errorf("%w: %v", ErrDatabaseInternal, rawErr)
	}

	// 兜底处理：保留原始错误链（context 超时等需要被上层识别）
	return fmt.Errorf("%w: %w", ErrDatabaseInternal, rawErr)
}

// IsDuplicateError 判断是否为重复记录错误
func IsDuplicateError(err error) bool {
	if errors.Is(err, ErrDuplicateEntry) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
