package rent

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ceciliaMar/Virtual-Library/app/echoServer/jwtx"
	"github.com/ceciliaMar/Virtual-Library/model"
	rs "github.com/ceciliaMar/Virtual-Library/service/rent"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/rents
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateRentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	rent, err := h.Svc.Open(c.Request().Context(), req.BookID, req.UserID)
	if err != nil {
		h.Log.Error("rent open", "err", err, "book_id", req.BookID, "user_id", req.UserID)
		switch rs.Code(err) {
		case rs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case rs.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case rs.ErrBookUnavailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is not available"})
		case rs.ErrRentLimit:
			return c.JSON(http.StatusConflict, echo.Map{"message": fmt.Sprintf("it is not possible to rent more than %d books", rs.MaxOpenRents)})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"data": rent})
}

// POST /v1/books/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if uid, err := jwtx.UserIDFromContext(c); err == nil {
		h.Log.Info("book return requested", "book_id", id, "by_user", uid)
	}

	out, err := h.Svc.Close(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("rent close", "err", err, "book_id", id)
		switch rs.Code(err) {
		case rs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case rs.ErrNotOnLoan:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is not rented"})
		case rs.ErrStateConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book was already returned, try again"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	msg := fmt.Sprintf("The book %s was returned successfully after %d days | Penalty: %d pesos (%d pesos for each extra day)",
		out.Book.Title, out.DaysElapsed, out.Penalty, rs.DailyPenaltyRate)

	return c.JSON(http.StatusOK, echo.Map{
		"book":         out.Book,
		"rent":         out.Rent,
		"penalty":      out.Penalty,
		"days_elapsed": out.DaysElapsed,
		"message":      msg,
	})
}

// GET /v1/rents
func (h *Controller) ListAll(c echo.Context) error {
	rows, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		h.Log.Error("rents list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/:id/rents
func (h *Controller) ByUser(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.History(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("rents by user", "err", err, "user_id", uid)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/:id/rents/open
func (h *Controller) OpenByUser(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.OpenRentsForUser(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("open rents by user", "err", err, "user_id", uid)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id/availability
func (h *Controller) Availability(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.Availability(c.Request().Context(), id)
	if err != nil {
		if rs.Code(err) == rs.ErrBookNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("availability", "err", err, "book_id", id)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}
