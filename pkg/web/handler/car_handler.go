package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/core/blob"
	"car-catalog/pkg/core/car/service"
	"car-catalog/pkg/web/middleware"
	"car-catalog/pkg/web/model"
)

type CarHandler struct {
	cars *service.CarService
}

func NewCarHandler(cars *service.CarService) *CarHandler {
	return &CarHandler{cars: cars}
}

// List GET /cars
func (h *CarHandler) List(ctx context.Context, c *app.RequestContext) {
	cars, err := h.cars.List(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, model.CarListResp{Success: true, Cars: cars})
}

// Create POST /cars
func (h *CarHandler) Create(ctx context.Context, c *app.RequestContext) {
	p := middleware.PrincipalFrom(c)
	if !p.Authenticated() {
		respondError(ctx, c, apperrors.Unauthenticated("Not Authenticated."))
		return
	}

	var req model.CreateCarReq
	if err := c.BindJSON(&req); err != nil {
		respondError(ctx, c, apperrors.Validation("Invalid request body."))
		return
	}

	car, err := h.cars.Create(ctx, p, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Images:      req.Images,
	})
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusCreated, model.CarResp{Success: true, Message: service.MsgCreated, Car: car})
}

// Get GET /cars/:id
func (h *CarHandler) Get(ctx context.Context, c *app.RequestContext) {
	car, err := h.cars.Get(ctx, middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, model.CarResp{Success: true, Car: car})
}

// Delete DELETE /cars/:id
func (h *CarHandler) Delete(ctx context.Context, c *app.RequestContext) {
	outcomes, err := h.cars.Delete(ctx, middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, model.DeleteCarResp{
		Success:       true,
		Message:       service.MsgDeleted,
		ImageFailures: len(blob.Failed(outcomes)),
	})
}
