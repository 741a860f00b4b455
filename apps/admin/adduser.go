package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/user"
)

func (cli *commandLine) addUser(uname, email, pwd string, role user.Role) error {
	ctx := context.Background()

	nu := user.NewUser{
		Username: uname,
		Email:    email,
		Password: pwd,
		Role:     role,
	}
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	fmt.Printf("created %s %q (%s)\n", usr.Role, usr.Username, usr.Email)
	return nil
}
