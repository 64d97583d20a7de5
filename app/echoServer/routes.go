package echoServer

import (
	"net/http"

	"github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/admin"
	"github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/auth"
	"github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/author"
	"github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/book"
	"github.com/ceciliaMar/Virtual-Library/app/echoServer/controller/rent"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Author    *author.Controller
	Book      *book.Controller
	Rent      *rent.Controller
	Admin     *admin.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	g := e.Group("/v1")
	g.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
	}))
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tok, ok := ctx.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			return next(ctx)
		}
	})

	// Authors
	g.GET("/authors", c.Author.List)
	g.GET("/authors/:id", c.Author.Detail)
	g.POST("/authors", c.Author.Create)
	g.PUT("/authors/:id", c.Author.Update)
	g.DELETE("/authors/:id", c.Author.Delete)

	// Books
	g.GET("/books", c.Book.List)
	g.GET("/books/:id", c.Book.Detail)
	g.GET("/books/:id/availability", c.Rent.Availability)
	g.POST("/books", c.Book.Create)
	g.PUT("/books/:id", c.Book.Update)
	g.DELETE("/books/:id", c.Book.Delete)

	// Rents
	g.POST("/rents", c.Rent.Create)
	g.POST("/books/:id/return", c.Rent.Return)
	g.GET("/rents", c.Rent.ListAll)
	g.GET("/users/:id/rents", c.Rent.ByUser)
	g.GET("/users/:id/rents/open", c.Rent.OpenByUser)

	// Admin jobs, manual trigger
	g.POST("/admin/reports/weekly", c.Admin.RunWeeklyReport)
	g.POST("/admin/alerts/overdue", c.Admin.RunOverdueAlerts)
}
