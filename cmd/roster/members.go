package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/form"
	"github.com/trexis-racing/roster/internal/client/model"
	"github.com/trexis-racing/roster/internal/client/nav"
	"github.com/trexis-racing/roster/internal/client/view"
)

func newMembersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "members",
		Aliases: []string{"member", "m"},
		Short:   "list and edit team members",
	}
	cmd.AddCommand(
		newMembersListCmd(a),
		newMembersGetCmd(a),
		newMembersAddCmd(a),
		newMembersEditCmd(a),
		newMembersDeleteCmd(a),
	)
	return cmd
}

func newMembersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list all members",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(nav.ViewMembers, nil); err != nil {
				return err
			}
			// Attach loads for the current user and follows a rejected
			// token back to the login view.
			v := view.NewMembersView(a.members, a.router, a.session)
			v.Attach()
			defer v.Close()
			if err := v.Err(); err != nil {
				return userError(v.Message(), err)
			}
			renderMembers(cmd.OutOrStdout(), v.Members())
			return nil
		},
	}
}

func newMembersGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "show one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openForm(cmd, args[0])
			if err != nil {
				return err
			}
			defer c.Close()
			renderMember(cmd.OutOrStdout(), c.Id(), c.Values())
			return nil
		},
	}
}

func newMembersAddCmd(a *app) *cobra.Command {
	var flags memberFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "add a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openForm(cmd, "")
			if err != nil {
				return err
			}
			defer c.Close()
			return submit(cmd, c, flags, "member added")
		},
	}
	flags.register(cmd)
	return cmd
}

func newMembersEditCmd(a *app) *cobra.Command {
	var flags memberFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "change fields of a member, unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openForm(cmd, args[0])
			if err != nil {
				return err
			}
			defer c.Close()
			return submit(cmd, c, flags, "member updated")
		},
	}
	flags.register(cmd)
	return cmd
}

func newMembersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "delete a member",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			if err := a.enter(nav.ViewMembers, nil); err != nil {
				return err
			}
			v := view.NewMembersView(a.members, a.router, a.session)
			defer v.Close()
			if err := v.Remove(id); err != nil {
				return userError(v.Message(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "member %d deleted\n", id)
			return nil
		},
	}
}

func newTeamsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "list the teams a member can join",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(nav.ViewMembers, nil); err != nil {
				return err
			}
			teams, err := a.members.ListTeams(cmd.Context())
			if err != nil {
				return userError(form.MsgTeamsFailed, err)
			}
			renderTeams(cmd.OutOrStdout(), teams)
			return nil
		},
	}
}

// openForm guards the details view and loads the form, in Edit mode when
// rawId is given.
func (a *app) openForm(cmd *cobra.Command, rawId string) (*form.Controller, error) {
	var (
		id     int
		params nav.Params
	)
	if rawId != "" {
		parsed, err := parseId(rawId)
		if err != nil {
			return nil, err
		}
		id, params = parsed, nav.Params{nav.ParamId: rawId}
	}
	if err := a.enter(nav.ViewMemberDetails, params); err != nil {
		return nil, err
	}

	c := form.NewController(a.members, a.router)
	stop := context.AfterFunc(cmd.Context(), c.Close)
	defer stop()
	if err := c.Init(id); err != nil {
		c.Close()
		return nil, userError(c.Message(), err)
	}
	return c, nil
}

func submit(cmd *cobra.Command, c *form.Controller, flags memberFlags, done string) error {
	c.SetValues(flags.apply(cmd, c.Values()))

	stop := context.AfterFunc(cmd.Context(), c.Close)
	defer stop()
	if err := c.Submit(); err != nil {
		return userError(c.Message(), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

type memberFlags struct {
	firstName string
	lastName  string
	jobTitle  string
	team      string
	status    string
}

func (f *memberFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.firstName, "first-name", "", "first name, at least 2 characters")
	cmd.Flags().StringVar(&f.lastName, "last-name", "", "last name, at least 2 characters")
	cmd.Flags().StringVar(&f.jobTitle, "job-title", "", "job title")
	cmd.Flags().StringVar(&f.team, "team", "", "team name, see `roster teams`")
	cmd.Flags().StringVar(&f.status, "status", "", "Active or Inactive")
}

// apply overlays the flags the user set on the current form values.
func (f memberFlags) apply(cmd *cobra.Command, v form.Values) form.Values {
	set := cmd.Flags().Changed
	if set("first-name") {
		v.FirstName = f.firstName
	}
	if set("last-name") {
		v.LastName = f.lastName
	}
	if set("job-title") {
		v.JobTitle = f.jobTitle
	}
	if set("team") {
		v.Team = f.team
	}
	if set("status") {
		v.Status = model.ParseStatus(f.status)
	}
	return v
}

func parseId(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid member id %q", raw)
	}
	return id, nil
}

// userError prefers the screen message and falls back to the server text.
func userError(msg string, err error) error {
	if errs.IsAuth(err) {
		if text := errs.Message(err); text != "" {
			return fmt.Errorf("%s, run `roster login` again", text)
		}
		return errLoginRequired
	}
	if errs.IsValidation(err) {
		return errors.New(errs.Message(err))
	}
	if msg == "" {
		return err
	}
	return errors.New(msg)
}
