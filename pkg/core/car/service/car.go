package service

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/datatypes"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/common/metrics"
	"car-catalog/pkg/common/validation"
	"car-catalog/pkg/core/blob"
	"car-catalog/pkg/core/car/model"
	"car-catalog/pkg/core/car/repository/dao"
	"car-catalog/pkg/core/event"
	"car-catalog/pkg/core/session"
)

const (
	msgNotAuthenticated = "Not Authenticated."
	msgListFailed       = "Failed to fetch cars."
	msgCreated          = "Car added successfully."
	msgDeleted          = "Car deleted successfully."
	msgNotFound         = "Car not found."
	msgNotOwner         = "Unauthorized."
	msgDeleteFailed     = "Failed to delete car."
	msgUnexpected       = "An unexpected error occurred."
)

// MsgCreated / MsgDeleted 供 web 层组装成功响应
const (
	MsgCreated = msgCreated
	MsgDeleted = msgDeleted
)

// CreateInput 新建车辆参数，images 超过上限直接拒绝而不是截断
type CreateInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images" validate:"max=10,dive,url"`
}

var createMessages = validation.Messages{
	"Title.required":       "Title is required",
	"Description.required": "Description is required",
	"Images.max":           "Maximum of 10 images allowed",
	"Images.url":           "Invalid image URL",
}

type CarService struct {
	repo        dao.CarRepository
	blobs       blob.Store
	events      event.Publisher
	callTimeout time.Duration
}

type Option func(*CarService)

func WithCallTimeout(d time.Duration) Option {
	return func(s *CarService) { s.callTimeout = d }
}

// WithPublisher 默认不发布事件
func WithPublisher(p event.Publisher) Option {
	return func(s *CarService) { s.events = p }
}

func NewCarService(repo dao.CarRepository, blobs blob.Store, opts ...Option) *CarService {
	s := &CarService{
		repo:        repo,
		blobs:       blobs,
		events:      event.NopPublisher{},
		callTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CarService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

// List 当前用户的全部车辆，创建时间倒序
func (s *CarService) List(ctx context.Context, p session.Principal) ([]model.Car, error) {
	if !p.Authenticated() {
		return nil, apperrors.Unauthenticated(msgNotAuthenticated)
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	cars, err := s.repo.ListByOwner(callCtx, p.UserID)
	if err != nil {
		return nil, apperrors.Store(msgListFailed, err)
	}
	return cars, nil
}

// Create 校验后落库，ownerId 取自会话
func (s *CarService) Create(ctx context.Context, p session.Principal, in CreateInput) (model.Car, error) {
	if !p.Authenticated() {
		return model.Car{}, apperrors.Unauthenticated(msgNotAuthenticated)
	}
	if err := validation.Struct(in, createMessages); err != nil {
		return model.Car{}, err
	}

	car := model.Car{
		UserID:      p.UserID,
		Title:       in.Title,
		Description: in.Description,
		Tags:        datatypes.JSONSlice[string](nonNil(in.Tags)),
		Images:      datatypes.JSONSlice[string](nonNil(in.Images)),
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo.Create(callCtx, &car); err != nil {
		return model.Car{}, apperrors.Store(msgUnexpected, err)
	}

	metrics.CarsCreated.Inc()
	hlog.CtxInfof(ctx, "car created id=%s user=%s images=%d", car.ID, p.UserID, len(car.Images))
	s.publish(ctx, event.CarEvent{Type: event.CarCreated, CarID: car.ID, UserID: p.UserID, ImageCount: len(car.Images)})
	return car, nil
}

// Get 读取单条记录并校验归属
func (s *CarService) Get(ctx context.Context, p session.Principal, id string) (model.Car, error) {
	if !p.Authenticated() {
		return model.Car{}, apperrors.Unauthenticated(msgNotAuthenticated)
	}
	return s.owned(ctx, p, id, msgUnexpected)
}

// Delete 先尽力删除全部图片，再删除记录。图片删除失败只记录日志，
// 结果通过 outcomes 返回给调用方
func (s *CarService) Delete(ctx context.Context, p session.Principal, id string) ([]blob.Outcome, error) {
	if !p.Authenticated() {
		return nil, apperrors.Unauthenticated(msgNotAuthenticated)
	}

	car, err := s.owned(ctx, p, id, msgDeleteFailed)
	if err != nil {
		return nil, err
	}

	outcomes := blob.DeleteAll(ctx, s.blobs, car.Images, s.callTimeout)
	if failed := blob.Failed(outcomes); len(failed) > 0 {
		metrics.BlobDeleteFailures.Add(float64(len(failed)))
	}

	// 图片阶段可能耗尽请求的截止时间，记录删除使用独立的调用时限
	recordCtx := ctx
	if s.callTimeout > 0 {
		recordCtx = context.WithoutCancel(ctx)
	}
	callCtx, cancel := s.withTimeout(recordCtx)
	defer cancel()
	err = s.repo.DeleteByID(callCtx, id)
	switch {
	case errors.Is(err, apperrors.ErrRecordNotFound):
		// 并发删除
		return outcomes, apperrors.NotFound(msgNotFound)
	case err != nil:
		return outcomes, apperrors.Store(msgDeleteFailed, err)
	}

	metrics.CarsDeleted.Inc()
	hlog.CtxInfof(ctx, "car deleted id=%s user=%s", id, p.UserID)
	s.publish(ctx, event.CarEvent{Type: event.CarDeleted, CarID: id, UserID: p.UserID, ImageCount: len(car.Images)})
	return outcomes, nil
}

func (s *CarService) owned(ctx context.Context, p session.Principal, id, storeMsg string) (model.Car, error) {
	if id == "" {
		return model.Car{}, apperrors.NotFound(msgNotFound)
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	car, err := s.repo.FindByID(callCtx, id)
	switch {
	case errors.Is(err, apperrors.ErrRecordNotFound):
		return model.Car{}, apperrors.NotFound(msgNotFound)
	case err != nil:
		return model.Car{}, apperrors.Store(storeMsg, err)
	}

	if !p.Owns(car.UserID) {
		return model.Car{}, apperrors.Unauthorized(msgNotOwner)
	}
	return car, nil
}

func (s *CarService) publish(ctx context.Context, evt event.CarEvent) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.events.Publish(callCtx, evt); err != nil {
		hlog.CtxWarnf(ctx, "publish %s for car %s failed: %v", evt.Type, evt.CarID, err)
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
