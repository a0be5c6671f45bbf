package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(name, email, pwd, role, clubID string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	if !core.ContainsString(user.AllRoles, role) {
		return errors.Errorf("unknown role %q", role)
	}
	if clubID != "" {
		if _, err := cli.repos.Clubs.GetClubByID(ctx, clubID); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	usr, err := cli.repos.Users.GetUserByEmail(ctx, email)
	exists := err == nil
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		usr = user.User{
			ID:            core.NewID("u"),
			Email:         email,
			JoinDate:      now.Format("2006-01-02"),
			JoinedClubIDs: []string{},
			CreatedAt:     now,
		}
	}
	usr.Name = name
	usr.Role = role
	usr.ClubID = ""
	if role == user.RoleClubAdmin {
		usr.ClubID = clubID
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.repos.Users.UpdateUser(ctx, usr)
	} else {
		_, err = cli.repos.Users.CreateUser(ctx, usr)
	}
	return err
}
