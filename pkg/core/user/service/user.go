package service

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/crypto/bcrypt"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/common/validation"
	"car-catalog/pkg/core/session"
	"car-catalog/pkg/core/user/model"
	"car-catalog/pkg/core/user/repository/dao"
)

// HashCost 与常见自适应哈希的工作因子 10 一致
const HashCost = bcrypt.DefaultCost

const (
	msgUserExists    = "User already exists."
	msgBadCredential = "Invalid email or password."
	msgUnexpected    = "An unexpected error occurred."
)

// RegisterInput 注册参数
type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	// bcrypt 只接受 72 字节以内的密码
	Password string `validate:"min=6,maxbytes=72"`
}

var registerMessages = validation.Messages{
	"Name.required":     "Name is required",
	"Email.required":    "Invalid email address",
	"Email.email":       "Invalid email address",
	"Password.min":      "Password must be at least 6 characters",
	"Password.maxbytes": "Password must be at most 72 bytes",
}

// Profile 对外展示的用户信息
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserService struct {
	repo        dao.UserRepository
	hashCost    int
	callTimeout time.Duration
}

type Option func(*UserService)

// WithHashCost 测试中可降低 bcrypt 成本
func WithHashCost(cost int) Option {
	return func(s *UserService) { s.hashCost = cost }
}

func WithCallTimeout(d time.Duration) Option {
	return func(s *UserService) { s.callTimeout = d }
}

func NewUserService(repo dao.UserRepository, opts ...Option) *UserService {
	s := &UserService{
		repo:        repo,
		hashCost:    HashCost,
		callTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

// Register 创建用户，重复邮箱返回 Conflict
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	if err := validation.Struct(in, registerMessages); err != nil {
		return err
	}

	callCtx, cancel := s.withTimeout(ctx)
	exists, err := s.repo.IsEmailExists(callCtx, in.Email)
	cancel()
	if err != nil {
		return apperrors.Store(msgUnexpected, err)
	}
	if exists {
		return apperrors.Conflict(msgUserExists)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return apperrors.Store(msgUnexpected, err)
	}

	callCtx, cancel = s.withTimeout(ctx)
	defer cancel()
	err = s.repo.Create(callCtx, &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashed),
	})
	switch {
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		// 并发注册同一邮箱时由唯一索引兜底
		return apperrors.Conflict(msgUserExists)
	case err != nil:
		return apperrors.Store(msgUnexpected, err)
	}

	hlog.CtxInfof(ctx, "user registered email=%s", in.Email)
	return nil
}

// Authenticate 校验邮箱与密码，失败时不区分用户不存在和密码错误
func (s *UserService) Authenticate(ctx context.Context, email, password string) (session.Principal, error) {
	if email == "" || password == "" {
		return session.Principal{}, apperrors.Unauthenticated(msgBadCredential)
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	user, err := s.repo.FindByEmail(callCtx, email)
	switch {
	case errors.Is(err, apperrors.ErrRecordNotFound):
		return session.Principal{}, apperrors.Unauthenticated(msgBadCredential)
	case err != nil:
		return session.Principal{}, apperrors.Store(msgUnexpected, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return session.Principal{}, apperrors.Unauthenticated(msgBadCredential)
	}

	return session.Principal{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Current 返回当前用户资料
func (s *UserService) Current(ctx context.Context, p session.Principal) (Profile, error) {
	if !p.Authenticated() {
		return Profile{}, apperrors.Unauthenticated("Not Authenticated.")
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	user, err := s.repo.FindByID(callCtx, p.UserID)
	switch {
	case errors.Is(err, apperrors.ErrRecordNotFound):
		// 令牌仍有效但用户已被管理员移除
		return Profile{}, apperrors.Unauthenticated("Not Authenticated.")
	case err != nil:
		return Profile{}, apperrors.Store(msgUnexpected, err)
	}
	return Profile{Name: user.Name, Email: user.Email}, nil
}
