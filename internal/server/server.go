package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/ymatsuda/torikae-backend/internal/handler"
	appmw "github.com/ymatsuda/torikae-backend/internal/middleware"
	"github.com/ymatsuda/torikae-backend/internal/repository"
	"github.com/ymatsuda/torikae-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e          *echo.Echo
	itemRepo   repository.ItemRepository
	swipeRepo  repository.SwipeRepository
	matchRepo  repository.MatchRepository
	msgRepo    repository.ExchangeMessageRepository
	notifyRepo repository.NotificationRepository
	sha        string
	build      string
}

func New(db *gorm.DB, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	itemRepo := repository.NewItemRepository(db)
	swipeRepo := repository.NewSwipeRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	msgRepo := repository.NewExchangeMessageRepository(db)
	notifyRepo := repository.NewNotificationRepository(db)

	notifySvc := service.NewNotificationService(notifyRepo)
	itemSvc := service.NewItemService(itemRepo)
	swipeSvc := service.NewSwipeService(itemRepo, swipeRepo, matchRepo, notifySvc)
	exchangeSvc := service.NewExchangeService(matchRepo, itemRepo, msgRepo, notifySvc)

	itemHandler := handler.NewItemHandler(itemSvc)
	swipeHandler := handler.NewSwipeHandler(swipeSvc)
	exchangeHandler := handler.NewExchangeHandler(exchangeSvc)
	notifyHandler := handler.NewNotificationHandler(notifySvc)

	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		logrus.WithError(err).Warn("firebase auth unavailable, mutating routes are unprotected")
	}
	var userHandler *handler.UserHandler
	if authMw != nil && authMw.Client() != nil {
		userHandler = handler.NewUserHandler(authMw.Client())
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	if authMw != nil {
		api.POST("/swipe/supply", swipeHandler.Supply, authMw.RequireAuth)
		api.POST("/swipe/demand", swipeHandler.Demand, authMw.RequireAuth)
		api.POST("/items", itemHandler.Create, authMw.RequireAuth)
		api.PUT("/items/:id", itemHandler.Update, authMw.RequireAuth)
		api.GET("/me/items", itemHandler.ListMine, authMw.RequireAuth)
		api.GET("/me/matches", exchangeHandler.ListMine, authMw.RequireAuth)
		api.GET("/matches/:id", exchangeHandler.Get, authMw.RequireAuth)
		api.POST("/matches/:id/accept", exchangeHandler.Accept, authMw.RequireAuth)
		api.POST("/matches/:id/cancel", exchangeHandler.Cancel, authMw.RequireAuth)
		api.POST("/matches/:id/complete", exchangeHandler.Complete, authMw.RequireAuth)
		api.GET("/matches/:id/messages", exchangeHandler.ListMessages, authMw.RequireAuth)
		api.POST("/matches/:id/messages", exchangeHandler.PostMessage, authMw.RequireAuth)
		api.GET("/notifications", notifyHandler.List, authMw.RequireAuth)
		api.POST("/notifications/read", notifyHandler.MarkAllRead, authMw.RequireAuth)
	} else {
		api.POST("/swipe/supply", swipeHandler.Supply)
		api.POST("/swipe/demand", swipeHandler.Demand)
		api.POST("/items", itemHandler.Create)
		api.PUT("/items/:id", itemHandler.Update)
		api.GET("/me/items", itemHandler.ListMine)
		api.GET("/me/matches", exchangeHandler.ListMine)
		api.GET("/matches/:id", exchangeHandler.Get)
		api.POST("/matches/:id/accept", exchangeHandler.Accept)
		api.POST("/matches/:id/cancel", exchangeHandler.Cancel)
		api.POST("/matches/:id/complete", exchangeHandler.Complete)
		api.GET("/matches/:id/messages", exchangeHandler.ListMessages)
		api.POST("/matches/:id/messages", exchangeHandler.PostMessage)
		api.GET("/notifications", notifyHandler.List)
		api.POST("/notifications/read", notifyHandler.MarkAllRead)
	}
	api.GET("/items", itemHandler.List)
	api.GET("/items/:id", itemHandler.Get)
	if userHandler != nil {
		api.GET("/users/:uid/public", userHandler.GetPublic)
	}

	return &Server{
		e:          e,
		itemRepo:   itemRepo,
		swipeRepo:  swipeRepo,
		matchRepo:  matchRepo,
		msgRepo:    msgRepo,
		notifyRepo: notifyRepo,
		sha:        sha,
		build:      buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects the database once it becomes reachable; the server can start
// serving /healthz before that.
func (s *Server) SetDB(db *gorm.DB) {
	s.itemRepo.SetDB(db)
	s.swipeRepo.SetDB(db)
	s.matchRepo.SetDB(db)
	s.msgRepo.SetDB(db)
	s.notifyRepo.SetDB(db)
}
