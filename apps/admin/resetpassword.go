package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{
		UsernameOrEmail: core.CleanString(uname, true /* lower */),
	})
	if err != nil {
		return errors.Wrap(err, "looking up user")
	}

	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()

	if _, err = cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}

	fmt.Printf("password reset for %q\n", usr.Username)
	return nil
}
