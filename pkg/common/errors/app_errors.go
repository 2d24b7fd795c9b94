// pkg/common/errors/app_errors.go

/*
  - 使用实例
    // 业务层只返回 *AppError，由 web 层一次性映射为 HTTP 状态码
    if errors.KindOf(err) == errors.KindNotFound {
    // ...
    }
*/
package errors

import (
	"errors"
	"strings"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// Kind 错误分类（封闭集合）
type Kind uint8

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindUnauthorized
	KindNotFound
	KindValidation
	KindConflict
	KindStore
	KindUpload
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_failed"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store_failure"
	case KindUpload:
		return "upload_failure"
	default:
		return "unknown"
	}
}

// AppError 业务错误。Message 面向客户端，Err 只写日志
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Public 是否可以把 Message 原样返回给客户端
func (e *AppError) Public() bool {
	return e.Kind != KindStore && e.Kind != KindUpload && e.Kind != KindUnknown
}

// HertzType 用于 c.Error(err).SetType(...)，日志中间件据此区分
func (e *AppError) HertzType() hzte.ErrorType {
	if e.Public() {
		return hzte.ErrorTypePublic
	}
	return hzte.ErrorTypePrivate
}

func newError(kind Kind, msg string, cause error) *AppError {
	return &AppError{Kind: kind, Message: msg, Err: cause}
}

func Unauthenticated(msg string) *AppError { return newError(KindUnauthenticated, msg, nil) }

func Unauthorized(msg string) *AppError { return newError(KindUnauthorized, msg, nil) }

func NotFound(msg string) *AppError { return newError(KindNotFound, msg, nil) }

func Conflict(msg string) *AppError { return newError(KindConflict, msg, nil) }

func Store(msg string, cause error) *AppError { return newError(KindStore, msg, cause) }

func Upload(msg string, cause error) *AppError { return newError(KindUpload, msg, cause) }

// Validation 多个字段错误以 ", " 拼接为一条消息
func Validation(msgs ...string) *AppError {
	return newError(KindValidation, strings.Join(msgs, ", "), nil)
}

// KindOf 取出错误分类，非 AppError 视为 KindUnknown
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// As 便捷包装
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
