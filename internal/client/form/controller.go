// Package form reconciles member form state with create-or-edit submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/model"
	"github.com/trexis-racing/roster/internal/client/nav"
	"github.com/trexis-racing/roster/pkg/log"
)

/**
 * @file: controller.go
 * @description: member details form, Create/Edit mode and submission
 */

const (
	MsgUpdateFailed = "Failed to update member"
	MsgAddFailed    = "Failed to add member"
	MsgLoadFailed   = "Failed to load member"
	MsgTeamsFailed  = "Failed to load teams"
)

// ErrClosed is returned when the form was disposed while a request was in flight.
var ErrClosed = errors.New("form closed")

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Values is the editable part of a member.
type Values struct {
	FirstName string       `json:"firstName" validate:"required,min=2"`
	LastName  string       `json:"lastName" validate:"required,min=2"`
	JobTitle  string       `json:"jobTitle" validate:"required"`
	Team      string       `json:"team" validate:"required"`
	Status    model.Status `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

func valuesOf(m model.Member) Values {
	return Values{
		FirstName: m.FirstName,
		LastName:  m.LastName,
		JobTitle:  m.JobTitle,
		Team:      m.Team,
		Status:    m.Status,
	}
}

func (v Values) member(id int) model.Member {
	return model.Member{
		Id:        id,
		FirstName: v.FirstName,
		LastName:  v.LastName,
		JobTitle:  v.JobTitle,
		Team:      v.Team,
		Status:    v.Status,
	}
}

// Repository is the subset of the member client the form needs.
type Repository interface {
	GetMember(ctx context.Context, id int) (*model.Member, error)
	CreateMember(ctx context.Context, m model.Member) (*model.Member, error)
	UpdateMember(ctx context.Context, m model.Member) (*model.Member, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
}

type Navigator interface {
	Navigate(view nav.View, params nav.Params) (bool, error)
}

type Controller struct {
	repo     Repository
	nav      Navigator
	validate *validator.Validate

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	mode   Mode
	id     int
	values Values
	teams  []model.Team
	msg    string
}

func NewController(repo Repository, navigator Navigator) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		repo:     repo,
		nav:      navigator,
		validate: newValidator(),
		ctx:      ctx,
		cancel:   cancel,
		values:   Values{Status: model.StatusInactive},
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Init loads teams and, when id > 0, the member to edit.
func (c *Controller) Init(id int) error {
	teams, err := c.repo.ListTeams(c.ctx)
	if c.closed() {
		return ErrClosed
	}
	if err != nil {
		log.Errorw("load teams failed", "error", err)
		c.setMessage(MsgTeamsFailed)
		return err
	}
	c.mu.Lock()
	c.teams = teams
	c.mu.Unlock()

	if id <= 0 {
		return nil
	}

	m, err := c.repo.GetMember(c.ctx, id)
	if c.closed() {
		return ErrClosed
	}
	if err != nil {
		log.Errorw("load member failed", "memberId", id, "error", err)
		c.setMessage(MsgLoadFailed)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeEdit
	c.id = m.Id
	c.values = valuesOf(*m)
	// upstream casing varies, the form only accepts the canonical values
	c.values.Status = model.ParseStatus(string(m.Status))
	return nil
}

// SetValues replaces the form contents. An empty status becomes Inactive.
func (c *Controller) SetValues(v Values) {
	if v.Status == "" {
		v.Status = model.StatusInactive
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = v
}

// Validate reports the first failing field as a ValidationError.
func (c *Controller) Validate() error {
	c.mu.Lock()
	v := c.values
	c.mu.Unlock()

	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.Validation("", err.Error())
	}
	fe := fieldErrs[0]
	return errs.Validation(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Submit validates, then updates (Edit) or creates (Create) and navigates to
// the members list on success.
func (c *Controller) Submit() error {
	if err := c.Validate(); err != nil {
		c.setMessage(errs.Message(err))
		return err
	}

	c.mu.Lock()
	mode, id, values := c.mode, c.id, c.values
	c.msg = ""
	c.mu.Unlock()

	var err error
	if mode == ModeEdit && id > 0 {
		err = c.update(id, values)
	} else {
		err = c.create(values)
	}
	if err != nil {
		return err
	}
	if _, err := c.nav.Navigate(nav.ViewMembers, nil); err != nil {
		return err
	}
	return nil
}

func (c *Controller) update(id int, values Values) error {
	// 更新前确认记录仍然存在
	existing, err := c.repo.GetMember(c.ctx, id)
	if c.closed() {
		return ErrClosed
	}
	if err == nil && existing == nil {
		err = errs.Status("get member", http.StatusNotFound, "member not found")
	}
	if err != nil {
		log.Errorw("existence check before update failed", "memberId", id, "error", err)
		c.setMessage(MsgUpdateFailed)
		return err
	}

	if _, err := c.repo.UpdateMember(c.ctx, values.member(id)); err != nil {
		if c.closed() {
			return ErrClosed
		}
		log.Errorw("update member failed", "memberId", id, "error", err)
		c.setMessage(MsgUpdateFailed)
		return err
	}
	if c.closed() {
		return ErrClosed
	}
	return nil
}

func (c *Controller) create(values Values) error {
	if _, err := c.repo.CreateMember(c.ctx, values.member(0)); err != nil {
		if c.closed() {
			return ErrClosed
		}
		log.Errorw("create member failed", "error", err)
		c.setMessage(MsgAddFailed)
		return err
	}
	if c.closed() {
		return ErrClosed
	}
	return nil
}

// Close cancels in-flight requests; their late results are discarded.
func (c *Controller) Close() {
	c.cancel()
}

func (c *Controller) closed() bool {
	return c.ctx.Err() != nil
}

func (c *Controller) setMessage(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msg = msg
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) Id() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

func (c *Controller) Teams() []model.Team {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Team(nil), c.teams...)
}

// Message is the user-visible error from the last operation, if any.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msg
}
