package blob

import (
	"bytes"
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/common/metrics"
	"car-catalog/pkg/core/session"
)

const (
	msgMissingFilename = "Filename is required."
	msgMissingBody     = "No file provided."
	msgUploadFailed    = "Failed to upload image."
)

// Uploader 直传图片到对象存储，不与任何车辆记录关联
type Uploader struct {
	store       Store
	callTimeout time.Duration
}

func NewUploader(store Store, callTimeout time.Duration) *Uploader {
	return &Uploader{store: store, callTimeout: callTimeout}
}

// Upload 校验会话、文件名和内容后写入对象存储
func (u *Uploader) Upload(ctx context.Context, p session.Principal, filename string, body []byte) (Object, error) {
	if !p.Authenticated() {
		return Object{}, apperrors.Unauthenticated("Not Authenticated.")
	}
	// "."、"/" 之类清洗后为空的文件名同样视为缺失
	if _, err := ObjectKey(filename); err != nil {
		return Object{}, apperrors.Validation(msgMissingFilename)
	}
	if len(body) == 0 {
		return Object{}, apperrors.Validation(msgMissingBody)
	}

	callCtx := ctx
	if u.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, u.callTimeout)
		defer cancel()
	}

	obj, err := u.store.Put(callCtx, filename, bytes.NewReader(body), int64(len(body)))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return Object{}, apperrors.Upload(msgUploadFailed, err)
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	hlog.CtxInfof(ctx, "blob uploaded user=%s path=%s size=%d", p.UserID, obj.Pathname, obj.Size)
	return obj, nil
}
