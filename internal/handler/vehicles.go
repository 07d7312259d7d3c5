package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-backend/internal/middleware"
	"github.com/roamnest/roamnest-backend/internal/model"
	"github.com/roamnest/roamnest-backend/internal/repository"
)

// VehicleHandler serves the vehicles service's listing endpoints, sharing
// the same gateway trust contract as the stays service.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(v *repository.VehicleRepo) *VehicleHandler {
	return &VehicleHandler{Vehicles: v}
}

type createVehicleReq struct {
	Make            string `json:"make"`
	Model           string `json:"model"`
	DailyPriceCents uint32 `json:"daily_price_cents"`
}

// ListPublic returns recent vehicle listings without authentication.
func (h *VehicleHandler) ListPublic(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vehicles, err := h.Vehicles.ListPublic(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicles": vehicles})
}

// Create inserts a vehicle listing owned by the calling host.
func (h *VehicleHandler) Create(c echo.Context) error {
	var req createVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Make = strings.TrimSpace(req.Make)
	req.Model = strings.TrimSpace(req.Model)
	if req.Make == "" || req.Model == "" || req.DailyPriceCents == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "make, model and daily_price_cents required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v := model.Vehicle{
		HostAccountID:   middleware.AccountID(c),
		Make:            req.Make,
		Model:           req.Model,
		DailyPriceCents: req.DailyPriceCents,
	}
	if err := h.Vehicles.Create(ctx, &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, v)
}
