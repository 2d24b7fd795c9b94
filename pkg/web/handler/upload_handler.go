package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"car-catalog/pkg/core/blob"
	"car-catalog/pkg/web/middleware"
)

type UploadHandler struct {
	uploader *blob.Uploader
}

func NewUploadHandler(uploader *blob.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload POST /upload?filename=NAME，请求体为原始文件字节
func (h *UploadHandler) Upload(ctx context.Context, c *app.RequestContext) {
	obj, err := h.uploader.Upload(ctx,
		middleware.PrincipalFrom(c),
		c.Query("filename"),
		c.Request.Body(),
	)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, obj)
}
