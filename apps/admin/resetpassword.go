package main

import (
	"context"

	"github.com/theadruss/Clix-App/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.repos.Users.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.repos.Users.UpdateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
