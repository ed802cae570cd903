package view

import (
	"context"
	"strconv"
	"sync"

	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/model"
	"github.com/trexis-racing/roster/internal/client/nav"
	"github.com/trexis-racing/roster/pkg/event"
	"github.com/trexis-racing/roster/pkg/log"
)

const (
	MsgLoadMembersFailed  = "Failed to load members"
	MsgDeleteMemberFailed = "Failed to delete member"
)

type MemberRepository interface {
	ListMembers(ctx context.Context) ([]model.Member, error)
	DeleteMember(ctx context.Context, id int) error
}

type UserStream interface {
	Subscribe(h event.Handler[*model.User]) (unsubscribe func())
}

// MembersView lists members while a user is logged in.
type MembersView struct {
	repo  MemberRepository
	nav   Navigator
	users UserStream

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	mu      sync.Mutex
	user    *model.User
	members []model.Member
	msg     string
	err     error
}

func NewMembersView(repo MemberRepository, navigator Navigator, users UserStream) *MembersView {
	ctx, cancel := context.WithCancel(context.Background())
	return &MembersView{repo: repo, nav: navigator, users: users, ctx: ctx, cancel: cancel}
}

// Attach follows the current-user stream: no user sends the view to login,
// a user triggers a reload.
func (v *MembersView) Attach() {
	v.unsubscribe = v.users.Subscribe(func(u *model.User) {
		v.mu.Lock()
		v.user = u
		v.mu.Unlock()

		if u == nil {
			if _, err := v.nav.Navigate(nav.ViewLogin, nil); err != nil {
				log.Errorw("navigate to login failed", "error", err)
			}
			return
		}
		if err := v.Load(); err != nil {
			log.Warnw("members not loaded", "username", u.Username, "error", err)
		}
	})
}

func (v *MembersView) Load() error {
	members, err := v.repo.ListMembers(v.ctx)
	if v.ctx.Err() != nil {
		return v.ctx.Err()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
	if err != nil {
		v.msg = MsgLoadMembersFailed
		return err
	}
	v.msg = ""
	v.members = members
	return nil
}

// Remove deletes remotely and, only on success, drops that id from the list.
func (v *MembersView) Remove(id int) error {
	if err := v.repo.DeleteMember(v.ctx, id); err != nil {
		log.Errorw("error deleting member", "memberId", id, "error", err)
		v.mu.Lock()
		v.msg = errs.Message(err)
		if v.msg == "" || errs.IsTransport(err) {
			v.msg = MsgDeleteMemberFailed
		}
		v.mu.Unlock()
		return err
	}
	if v.ctx.Err() != nil {
		return v.ctx.Err()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.members[:0:0]
	for _, m := range v.members {
		if m.Id != id {
			kept = append(kept, m)
		}
	}
	v.members = kept
	return nil
}

// Open shows the details of one member.
func (v *MembersView) Open(id int) (bool, error) {
	return v.nav.Navigate(nav.ViewMemberDetails, nav.Params{nav.ParamId: strconv.Itoa(id)})
}

// Add shows an empty member form.
func (v *MembersView) Add() (bool, error) {
	return v.nav.Navigate(nav.ViewMemberDetails, nil)
}

func (v *MembersView) Members() []model.Member {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Member(nil), v.members...)
}

func (v *MembersView) User() *model.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.user
}

func (v *MembersView) Message() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.msg
}

// Err is the outcome of the last load, nil once members are shown.
func (v *MembersView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Close stops following the user stream and abandons in-flight requests.
func (v *MembersView) Close() {
	v.cancel()
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}
