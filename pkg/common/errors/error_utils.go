package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 仓储层哨兵错误，由 service 层翻译为 AppError
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrDatabaseInternal = errors.New("database internal error")
	ErrStoreTimeout     = errors.New("store call timed out")
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

	switch {
	case errors.Is(rawErr, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case IsDuplicateError(rawErr):
		return ErrDuplicateEntry
	case errors.Is(rawErr, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrStoreTimeout, rawErr)
	}

	// 处理MySQL驱动错误
	var mysqlErr *mysql.MySQLError
	if errors.As(rawErr, &mysqlErr) {
		switch mysqlErr.Number {
		case 1045, 1049, 1146: // 数据库连接、表不存在等错误
			return fmt.Errorf("%w: %s", ErrDatabaseInternal, mysqlErr.Message)
		}
	}

	// 兜底处理：附加原始错误信息
	return fmt.Errorf("%w: %v", ErrDatabaseInternal, rawErr)
}

// IsDuplicateError 判断是否为重复记录错误
func IsDuplicateError(err error) bool {
	if errors.Is(err, ErrDuplicateEntry) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// endregion
