package handler

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} | Car Catalog</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Body}}</p>
</body>
</html>
`))

type page struct {
	Title string
	Body  string
}

// Page 渲染一个静态页面，路由守卫在中间件中完成
func Page(title, body string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		var buf bytes.Buffer
		if err := pageTmpl.Execute(&buf, page{Title: title, Body: body}); err != nil {
			hlog.CtxErrorf(ctx, "render page %s: %v", title, err)
			c.String(http.StatusInternalServerError, msgUnexpected)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}
