// Package controller 保存客户端表单与列表状态，编排图片上传、提交和删除。
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"car-catalog/pkg/client/api"
)

// MaxImages 单次提交最多上传的图片数
const MaxImages = 10

const (
	WarnTooManyImages = "Only the first 10 images will be uploaded."
)

var (
	ErrUploadsFailed = errors.New("Some images failed to upload.")
	ErrSubmitting    = errors.New("A submission is already in progress.")
	ErrNotConfirmed  = errors.New("Deletion cancelled.")
	ErrUnknownCar    = errors.New("Car not found.")
)

// Gateway 客户端依赖的远端接口
type Gateway interface {
	ListCars(ctx context.Context) ([]api.Car, error)
	CreateCar(ctx context.Context, in api.CarInput) (api.Car, error)
	DeleteCar(ctx context.Context, id string) error
	Upload(ctx context.Context, filename string, data []byte) (api.Upload, error)
}

// File 待上传的本地文件
type File struct {
	Name string
	Data []byte
}

// Form 新建表单，Tags 为逗号分隔的原始输入
type Form struct {
	Title       string
	Description string
	Tags        string
	Files       []File
}

type Controller struct {
	gw Gateway

	mu         sync.Mutex
	form       Form
	submitting bool
	cars       []api.Car
	index      map[string]int
}

func New(gw Gateway) *Controller {
	return &Controller{gw: gw, index: map[string]int{}}
}

// SetFields 更新文本字段，不影响已选文件
func (c *Controller) SetFields(title, description, tags string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Title = title
	c.form.Description = description
	c.form.Tags = tags
}

// SelectImages 只保留前 10 个文件，超出时返回一条警告
func (c *Controller) SelectImages(files []File) []string {
	var warnings []string
	if len(files) > MaxImages {
		files = files[:MaxImages]
		warnings = append(warnings, WarnTooManyImages)
	}

	c.mu.Lock()
	c.form.Files = append([]File(nil), files...)
	c.mu.Unlock()
	return warnings
}

func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.form
	f.Files = append([]File(nil), c.form.Files...)
	return f
}

// ParseTags 逗号分隔，去空白并丢弃空项，保持顺序
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// UploadAll 并发上传全部文件并等待结束。任何一个失败都返回 ErrUploadsFailed，
// 成功的 URL 按文件顺序返回
func UploadAll(ctx context.Context, gw Gateway, files []File) ([]string, error) {
	urls := make([]string, len(files))
	var g errgroup.Group
	for i, f := range files {
		g.Go(func() error {
			up, err := gw.Upload(ctx, f.Name, f.Data)
			if err != nil {
				return err
			}
			urls[i] = up.URL
			return nil
		})
	}
	_ = g.Wait()

	uploaded := 0
	for _, u := range urls {
		if u != "" {
			uploaded++
		}
	}
	if uploaded != len(files) {
		return nil, ErrUploadsFailed
	}
	return urls, nil
}

// Submit 上传图片后创建记录。失败时保留表单，成功后清空表单并把新记录放到列表最前
func (c *Controller) Submit(ctx context.Context) (api.Car, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return api.Car{}, ErrSubmitting
	}
	c.submitting = true
	form := c.form
	form.Files = append([]File(nil), c.form.Files...)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	images, err := UploadAll(ctx, c.gw, form.Files)
	if err != nil {
		return api.Car{}, err
	}

	car, err := c.gw.CreateCar(ctx, api.CarInput{
		Title:       form.Title,
		Description: form.Description,
		Tags:        ParseTags(form.Tags),
		Images:      images,
	})
	if err != nil {
		return api.Car{}, err
	}

	c.mu.Lock()
	c.form = Form{}
	c.cars = append([]api.Car{car}, c.cars...)
	c.index[car.ID] = 0
	c.mu.Unlock()
	return car, nil
}

// Refresh 重新拉取列表，所有轮播位置归零
func (c *Controller) Refresh(ctx context.Context) error {
	cars, err := c.gw.ListCars(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cars = cars
	c.index = make(map[string]int, len(cars))
	for _, car := range cars {
		c.index[car.ID] = 0
	}
	return nil
}

func (c *Controller) Cars() []api.Car {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Car(nil), c.cars...)
}

// Delete 确认后调用远端删除，只有成功才移除本地记录
func (c *Controller) Delete(ctx context.Context, id string, confirm func(api.Car) bool) error {
	car, ok := c.find(id)
	if !ok {
		return ErrUnknownCar
	}
	if confirm == nil || !confirm(car) {
		return ErrNotConfirmed
	}

	if err := c.gw.DeleteCar(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cars {
		if c.cars[i].ID == id {
			c.cars = append(c.cars[:i:i], c.cars[i+1:]...)
			break
		}
	}
	delete(c.index, id)
	return nil
}

func (c *Controller) find(id string) (api.Car, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, car := range c.cars {
		if car.ID == id {
			return car, true
		}
	}
	return api.Car{}, false
}
