// Package blobtest 提供内存版对象存储，供其他包的测试使用。
package blobtest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"car-catalog/pkg/core/blob"
)

const BaseURL = "https://blob.test/cars-bucket"

var ErrInjected = errors.New("injected blob failure")

// MemoryStore 线程安全；FailPut/FailDelete 命中时返回 ErrInjected
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	FailPut    func(name string) bool
	FailDelete func(url string) bool
	PingErr    error
	// HangDelete 为 true 时 Delete 阻塞到 ctx 结束
	HangDelete bool
}

var _ blob.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (m *MemoryStore) Put(_ context.Context, name string, r io.Reader, _ int64) (blob.Object, error) {
	if m.FailPut != nil && m.FailPut(name) {
		return blob.Object{}, ErrInjected
	}
	key, err := blob.ObjectKey(name)
	if err != nil {
		return blob.Object{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return blob.Object{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	url := BaseURL + "/" + key
	m.objects[url] = data
	return blob.Object{
		URL:         url,
		DownloadURL: url + "?download=1",
		Pathname:    key,
		ContentType: blob.ContentType(name),
		Size:        int64(len(data)),
	}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, url string) error {
	if m.HangDelete {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.FailDelete != nil && m.FailDelete(url) {
		return ErrInjected
	}
	if !strings.HasPrefix(url, BaseURL+"/") {
		return blob.ErrForeignURL
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return m.PingErr }

// Has 对象是否仍然存在
func (m *MemoryStore) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[url]
	return ok
}

// Seed 直接写入对象，返回其 URL
func (m *MemoryStore) Seed(key string, data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := BaseURL + "/" + key
	m.objects[url] = data
	return url
}

// Deleted 已成功删除的 URL
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
