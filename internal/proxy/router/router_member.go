package router

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/log"
)

func (rt *Router) listMembers(c *fiber.Ctx) error {
	return rt.forward(c, fiber.MethodGet, "/members", nil)
}

func (rt *Router) listTeams(c *fiber.Ctx) error {
	return rt.forward(c, fiber.MethodGet, "/teams", nil)
}

func (rt *Router) getMember(c *fiber.Ctx) error {
	id, ok := memberId(c)
	if !ok {
		return http.WithRepErr(c, fiber.StatusBadRequest, http.InvalidMemberId, c.Path())
	}
	return rt.forward(c, fiber.MethodGet, "/members/"+id, nil)
}

// addMember 新建成员，id 由上游分配
func (rt *Router) addMember(c *fiber.Ctx) error {
	form, err := formOf(c)
	if err != nil {
		return http.WithRepErr(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, c.Path())
	}
	form.Del("id")
	return rt.forward(c, fiber.MethodPost, "/members", form)
}

func (rt *Router) updateMember(c *fiber.Ctx) error {
	id, ok := memberId(c)
	if !ok {
		return http.WithRepErr(c, fiber.StatusBadRequest, http.InvalidMemberId, c.Path())
	}
	form, err := formOf(c)
	if err != nil {
		return http.WithRepErr(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, c.Path())
	}
	return rt.forward(c, fiber.MethodPut, "/members/"+id, form)
}

func (rt *Router) deleteMember(c *fiber.Ctx) error {
	id, ok := memberId(c)
	if !ok {
		return http.WithRepErr(c, fiber.StatusBadRequest, http.InvalidMemberId, c.Path())
	}
	return rt.forward(c, fiber.MethodDelete, "/members/"+id, nil)
}

// forward 转发到上游，状态码不超过 500 时原样返回
func (rt *Router) forward(c *fiber.Ctx, method, path string, form url.Values) error {
	resp, err := rt.Upstream.Forward(c.UserContext(), method, path, form)
	if err != nil {
		return http.WithRepErr(c, fiber.StatusBadGateway, http.UpstreamUnavailable, c.Path())
	}
	if resp.Status > fiber.StatusInternalServerError {
		log.Warnw("upstream returned server error", "method", method, "path", path, "status", resp.Status)
		return http.WithRepErr(c, fiber.StatusBadGateway, http.UpstreamUnavailable, c.Path())
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = fiber.MIMEApplicationJSONCharsetUTF8
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(resp.Status).Send(resp.Body)
}

func memberId(c *fiber.Ctx) (string, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return "", false
	}
	return strconv.Itoa(id), true
}

// formOf 将 JSON 或表单请求体转换为表单值
func formOf(c *fiber.Ctx) (url.Values, error) {
	form := url.Values{}
	body := c.Body()
	if len(body) == 0 {
		return form, nil
	}

	switch {
	case c.Is("json"):
		var fields map[string]any
		if err := sonic.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
		for k, v := range fields {
			if v == nil {
				continue
			}
			form.Set(k, formValue(v))
		}
	default:
		parsed, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, err
		}
		form = parsed
	}
	return form, nil
}

// formValue renders a decoded JSON value; numbers never use exponent form.
func formValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
