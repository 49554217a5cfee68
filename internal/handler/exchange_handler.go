package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ymatsuda/torikae-backend/internal/model"
	"github.com/ymatsuda/torikae-backend/internal/service"
)

type ExchangeHandler struct {
	svc service.ExchangeService
}

func NewExchangeHandler(svc service.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{svc: svc}
}

type MatchResponse struct {
	ID          uint64  `json:"id"`
	UserAUID    string  `json:"userAUid"`
	UserBUID    string  `json:"userBUid"`
	UserAItemID *uint64 `json:"userAItemId"`
	UserBItemID *uint64 `json:"userBItemId"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toMatchResponse(m *model.Match) MatchResponse {
	return MatchResponse{
		ID:          m.ID,
		UserAUID:    m.UserAUID,
		UserBUID:    m.UserBUID,
		UserAItemID: m.UserAItemID,
		UserBItemID: m.UserBItemID,
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
}

type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
}

type MessageResponse struct {
	ID        uint64 `json:"id"`
	MatchID   uint64 `json:"matchId"`
	SenderUID string `json:"senderUid"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

func toMessageResponse(m *model.ExchangeMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		MatchID:   m.MatchID,
		SenderUID: m.SenderUID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ExchangeHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("not authenticated"))
	}
	list, err := h.svc.ListMatches(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to fetch matches"))
	}
	resp := MatchListResponse{Matches: make([]MatchResponse, 0, len(list))}
	for i := range list {
		resp.Matches = append(resp.Matches, toMatchResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, NewSuccessResponse(resp))
}

func (h *ExchangeHandler) Get(c echo.Context) error {
	return h.withMatch(c, h.svc.GetMatch)
}

func (h *ExchangeHandler) Accept(c echo.Context) error {
	return h.withMatch(c, h.svc.Accept)
}

func (h *ExchangeHandler) Cancel(c echo.Context) error {
	return h.withMatch(c, h.svc.Cancel)
}

func (h *ExchangeHandler) Complete(c echo.Context) error {
	return h.withMatch(c, h.svc.Complete)
}

func (h *ExchangeHandler) withMatch(c echo.Context, op func(ctx context.Context, matchID uint64, uid string) (*model.Match, error)) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("not authenticated"))
	}
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid match id"))
	}
	m, err := op(c.Request().Context(), matchID, uid)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, NewSuccessResponse(toMatchResponse(m)))
}

func (h *ExchangeHandler) ListMessages(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("not authenticated"))
	}
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid match id"))
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), matchID, uid)
	if err != nil {
		return h.mapError(c, err)
	}
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageResponse(&msgs[i]))
	}
	return c.JSON(http.StatusOK, NewSuccessResponse(out))
}

func (h *ExchangeHandler) PostMessage(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("not authenticated"))
	}
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid match id"))
	}
	var body struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid json"))
	}
	msg, err := h.svc.PostMessage(c.Request().Context(), matchID, uid, body.Body)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, NewSuccessResponse(toMessageResponse(msg)))
}

func (h *ExchangeHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("match not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("not allowed"))
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid match state"))
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
	}
}
