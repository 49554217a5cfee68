package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ymatsuda/torikae-backend/internal/model"
	"github.com/ymatsuda/torikae-backend/internal/service"
)

type SwipeHandler struct {
	svc service.SwipeService
}

func NewSwipeHandler(svc service.SwipeService) *SwipeHandler {
	return &SwipeHandler{svc: svc}
}

type SwipeRequest struct {
	ItemID    string `json:"itemId"`
	Direction string `json:"direction"`
}

type SwipeEventResponse struct {
	ID             uint64 `json:"id"`
	SwiperUID      string `json:"swiperUid"`
	TargetItemID   uint64 `json:"targetItemId"`
	TargetOwnerUID string `json:"targetOwnerUid"`
	Kind           string `json:"kind"`
	Direction      string `json:"direction"`
	CreatedAt      string `json:"createdAt"`
}

type SwipeResultResponse struct {
	Swipe        SwipeEventResponse `json:"swipe"`
	CreatedMatch *MatchResponse     `json:"createdMatch"`
	Outcome      string             `json:"outcome"`
}

// Supply handles POST /swipe/supply: the caller is browsing items they could
// receive.
func (h *SwipeHandler) Supply(c echo.Context) error {
	return h.record(c, model.SwipeKindSupply)
}

// Demand handles POST /swipe/demand: the caller is browsing items they could
// offer.
func (h *SwipeHandler) Demand(c echo.Context) error {
	return h.record(c, model.SwipeKindDemand)
}

func (h *SwipeHandler) record(c echo.Context, kind model.SwipeKind) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("not authenticated"))
	}
	var req SwipeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid json"))
	}
	itemID, err := strconv.ParseUint(req.ItemID, 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid itemId"))
	}
	direction := model.SwipeDirection(req.Direction)
	if !direction.Valid() {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid direction"))
	}

	res, err := h.svc.RecordSwipe(c.Request().Context(), uid, itemID, kind, direction)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("item not found"))
		case errors.Is(err, service.ErrSelfSwipe):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("cannot swipe on your own item"))
		case errors.Is(err, service.ErrInvalidSwipe):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid swipe"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to record swipe"))
		}
	}

	resp := SwipeResultResponse{
		Swipe:   toSwipeEventResponse(res.Swipe),
		Outcome: string(res.Outcome),
	}
	if res.Match != nil {
		m := toMatchResponse(res.Match)
		resp.CreatedMatch = &m
	}
	return c.JSON(http.StatusOK, NewSuccessResponse(resp))
}

func toSwipeEventResponse(s *model.SwipeEvent) SwipeEventResponse {
	return SwipeEventResponse{
		ID:             s.ID,
		SwiperUID:      s.SwiperUID,
		TargetItemID:   s.TargetItemID,
		TargetOwnerUID: s.TargetOwnerUID,
		Kind:           string(s.Kind),
		Direction:      string(s.Direction),
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
	}
}
