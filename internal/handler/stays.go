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

// StayHandler serves the stays service's listing endpoints. The service
// owns no credentials: the only identity it ever sees is the account id
// the gateway middleware verified out of the bearer token.
type StayHandler struct {
	Stays *repository.StayRepo
}

func NewStayHandler(s *repository.StayRepo) *StayHandler { return &StayHandler{Stays: s} }

type createStayReq struct {
	Title             string `json:"title"`
	City              string `json:"city"`
	NightlyPriceCents uint32 `json:"nightly_price_cents"`
}

// ListPublic returns recent listings. Explicitly unauthenticated: browse
// is a public route and never goes through the gateway middleware.
func (h *StayHandler) ListPublic(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stays, err := h.Stays.ListPublic(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if stays == nil {
		stays = []model.Stay{}
	}
	return c.JSON(http.StatusOK, echo.Map{"stays": stays})
}

// ListMine returns the listings owned by the calling host.
func (h *StayHandler) ListMine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stays, err := h.Stays.ListByHost(ctx, middleware.AccountID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if stays == nil {
		stays = []model.Stay{}
	}
	return c.JSON(http.StatusOK, echo.Map{"stays": stays})
}

// Create inserts a listing owned by the calling host. The owning account
// always comes from the verified token, never from the body.
func (h *StayHandler) Create(c echo.Context) error {
	var req createStayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.City = strings.TrimSpace(req.City)
	if req.Title == "" || req.City == "" || req.NightlyPriceCents == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "title, city and nightly_price_cents required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s := model.Stay{
		HostAccountID:     middleware.AccountID(c),
		Title:             req.Title,
		City:              req.City,
		NightlyPriceCents: req.NightlyPriceCents,
	}
	if err := h.Stays.Create(ctx, &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, s)
}
