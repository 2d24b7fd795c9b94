package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/core/user/service"
	"car-catalog/pkg/web/middleware"
	"car-catalog/pkg/web/model"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register POST /sign-up
func (h *UserHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req model.RegisterReq
	if err := c.BindJSON(&req); err != nil {
		respondError(ctx, c, apperrors.Validation("Invalid request body."))
		return
	}

	err := h.users.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusCreated, model.MessageResp{Success: true, Message: "User registered successfully."})
}

// Me GET /me
func (h *UserHandler) Me(ctx context.Context, c *app.RequestContext) {
	profile, err := h.users.Current(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, model.ProfileResp{Success: true, Name: profile.Name, Email: profile.Email})
}
