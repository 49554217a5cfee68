package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/ymatsuda/torikae-backend/internal/config"
	"github.com/ymatsuda/torikae-backend/internal/db"
	"github.com/ymatsuda/torikae-backend/internal/model"
	"github.com/ymatsuda/torikae-backend/internal/server"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	setupLogging()

	srv := server.New(nil, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		logrus.WithField("addr", addr).Info("starting server")
		errCh <- srv.Start(addr)
	}()

	go func() {
		cfg, err := config.Load()
		if err != nil {
			logrus.WithError(err).Error("config load failed")
			return
		}
		conn, err := db.Connect(cfg)
		if err != nil {
			logrus.WithError(err).Error("db connect failed")
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(
			&model.Item{},
			&model.SwipeEvent{},
			&model.Match{},
			&model.ExchangeMessage{},
			&model.Notification{},
		); err != nil {
			logrus.WithError(err).Warn("auto migrate failed")
		}
	}()

	if err := <-errCh; err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func setupLogging() {
	cfgLevel := os.Getenv("LOG_LEVEL")
	if level, err := logrus.ParseLevel(cfgLevel); err == nil {
		logrus.SetLevel(level)
	}
	if os.Getenv("LOG_JSON") == "true" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
