package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/web/model"
)

const msgUnexpected = "An unexpected error occurred."

// statusOf 错误分类到 HTTP 状态码的唯一映射
func statusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.KindUnauthorized:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindValidation, apperrors.KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError 输出 {success:false, message}，内部错误细节只写日志
func respondError(ctx context.Context, c *app.RequestContext, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Store(msgUnexpected, err)
	}

	_ = c.Error(err).SetType(appErr.HertzType())

	msg := appErr.Message
	if !appErr.Public() {
		hlog.CtxErrorf(ctx, "%s %s: %v", c.Method(), c.Path(), err)
		if msg == "" {
			msg = msgUnexpected
		}
	}
	c.JSON(statusOf(appErr.Kind), model.MessageResp{Success: false, Message: msg})
}
