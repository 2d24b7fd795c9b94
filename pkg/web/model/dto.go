package model

import (
	"time"

	carmodel "car-catalog/pkg/core/car/model"
)

// RegisterReq 注册请求
type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInReq 登录请求，identifier 与 email 二选一
type SignInReq struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// Login 优先使用 identifier
func (r SignInReq) Login() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Email
}

// CreateCarReq 新建车辆请求
type CreateCarReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

// MessageResp 通用响应，失败时 Success 为 false
type MessageResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type TokenResp struct {
	Success bool      `json:"success"`
	Token   string    `json:"token"`
	Expire  time.Time `json:"expire"`
}

type CarResp struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Car     carmodel.Car `json:"car"`
}

type CarListResp struct {
	Success bool           `json:"success"`
	Cars    []carmodel.Car `json:"cars"`
}

// DeleteCarResp 图片删除失败不影响结果，仅在 ImageFailures 中计数
type DeleteCarResp struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ImageFailures int    `json:"imageFailures,omitempty"`
}

type ProfileResp struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}
