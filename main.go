// Package main virtual library API.
//
// @title           Virtual Library API
// @version         1.0
// @description     library lending service (authors, books, users, rents).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ceciliaMar/Virtual-Library/app/echoServer"
	adminctrl "github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/admin"
	authctrl "github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/auth"
	authorctrl "github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/author"
	bookctrl "github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/book"
	rentctrl "github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/rent"
	"github.com/ceciliaMar/Virtual-Library/app/echoServer/validation"
	"github.com/ceciliaMar/Virtual-Library/config"
	authorrepo "github.com/ceciliaMar/Virtual-Library/repository/author"
	bookrepo "github.com/ceciliaMar/Virtual-Library/repository/book"
	rentrepo "github.com/ceciliaMar/Virtual-Library/repository/rent"
	userrepo "github.com/ceciliaMar/Virtual-Library/repository/user"
	adminsvc "github.com/ceciliaMar/Virtual-Library/service/admin"
	authsvc "github.com/ceciliaMar/Virtual-Library/service/auth"
	authorsvc "github.com/ceciliaMar/Virtual-Library/service/author"
	booksvc "github.com/ceciliaMar/Virtual-Library/service/book"
	rentsvc "github.com/ceciliaMar/Virtual-Library/service/rent"
	"github.com/ceciliaMar/Virtual-Library/util/database"
	"github.com/ceciliaMar/Virtual-Library/workers"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	ar := authorrepo.New(db)
	br := bookrepo.New(db)
	rr := rentrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	aus := authorsvc.New(ar)
	bs := booksvc.New(br, ar)
	rs := rentsvc.New(rr, ur)
	ads := adminsvc.New(rr, cfg.AdminEmail)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	authorC := &authorctrl.Controller{Svc: aus, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	rentC := &rentctrl.Controller{Svc: rs, V: v, Log: log}
	adminC := &adminctrl.Controller{Svc: ads, Log: log}

	// background jobs: weekly report + overdue alerts
	sched := workers.NewScheduler(ads, workers.LogSender{}, cfg.ReportInterval, log)
	sched.Start(ctx)

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:   authC,
		Author: authorC,
		Book:   bookC,
		Rent:   rentC,
		Admin:  adminC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
