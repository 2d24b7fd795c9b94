package handler

import (
	"bytes"
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"car-catalog/pkg/common/metrics"
)

// Metrics GET /metrics，Prometheus 文本格式
func Metrics(ctx context.Context, c *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WriteText(&buf); err != nil {
		respondError(ctx, c, err)
		return
	}
	c.Data(http.StatusOK, metrics.ContentType, buf.Bytes())
}
