package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/trexis-racing/roster/internal/proxy/service"
	"github.com/trexis-racing/roster/pkg/http"
)

type loginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return http.WithRepErr(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, c.Path())
	}
	if req.Username == "" || req.Password == "" {
		return http.WithRepErr(c, fiber.StatusBadRequest, http.UsernameArePasswordIsRequired, c.Path())
	}

	res, err := rt.Auth.Login(c.UserContext(), req.Username, req.Password)
	switch {
	case err == nil:
		return c.JSON(res)
	case errors.Is(err, service.ErrInvalidUsername):
		return http.WithRepErr(c, fiber.StatusUnauthorized, http.InvalidUser, c.Path())
	case errors.Is(err, service.ErrInvalidPassword):
		return http.WithRepErr(c, fiber.StatusUnauthorized, http.InvalidPasswd, c.Path())
	case errors.Is(err, service.ErrFetchUsers):
		return http.WithRepErr(c, fiber.StatusInternalServerError, http.FetchUsersFail, c.Path())
	default:
		return http.WithRepErr(c, fiber.StatusInternalServerError, http.InternalError, c.Path())
	}
}
