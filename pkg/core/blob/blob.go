// Package blob 存放车辆图片。记录只保存公开 URL，字节归对象存储所有。
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrForeignURL = errors.New("url does not belong to this store")
	ErrEmptyName  = errors.New("object name is empty")
)

// Object 上传结果
type Object struct {
	URL                string `json:"url"`
	DownloadURL        string `json:"downloadUrl"`
	Pathname           string `json:"pathname"`
	ContentType        string `json:"contentType"`
	ContentDisposition string `json:"contentDisposition"`
	Size               int64  `json:"size"`
}

// Store 对象存储
type Store interface {
	// Put 以公开读权限写入，返回公开 URL
	Put(ctx context.Context, name string, r io.Reader, size int64) (Object, error)
	// Delete 按 Put 返回的 URL 删除
	Delete(ctx context.Context, url string) error
	// Ping 探活
	Ping(ctx context.Context) error
}

// ObjectKey 生成唯一对象键，保留原始文件名便于辨认
func ObjectKey(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '-'
		case r < 0x20 || r == '?' || r == '#' || r == '%':
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == "/" {
		return "", ErrEmptyName
	}
	return fmt.Sprintf("cars/%s-%s", uuid.NewString(), base), nil
}

// ContentType 按扩展名推断 MIME 类型
func ContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func contentDisposition(key string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, path.Base(key))
}

// keyFromURL 把公开 URL 还原为对象键
func keyFromURL(baseURL, url string) (string, error) {
	prefix := strings.TrimSuffix(baseURL, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(url, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}

// Outcome 单个对象删除的结果
type Outcome struct {
	URL string
	Err error
}

// DeleteAll 并发删除全部 URL 并等待结束。失败只记录日志，从不返回错误；
// 调用方通过返回的 Outcome 了解每一项的结果，顺序与 urls 一致。
// callTimeout > 0 时每次删除单独限时，整体耗时不超过一个 callTimeout。
func DeleteAll(ctx context.Context, store Store, urls []string, callTimeout time.Duration) []Outcome {
	outcomes := make([]Outcome, len(urls))
	var mu sync.Mutex
	var g errgroup.Group

	for i, u := range urls {
		g.Go(func() error {
			callCtx := ctx
			if callTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, callTimeout)
				defer cancel()
			}
			err := store.Delete(callCtx, u)
			if err != nil {
				hlog.CtxWarnf(ctx, "failed to delete blob url=%s: %v", u, err)
			}
			mu.Lock()
			outcomes[i] = Outcome{URL: u, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Failed 过滤出失败的结果
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
