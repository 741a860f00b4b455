package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/user"
)

// Default bootstrap admin credentials. Change the password right after the
// first login.
const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "admin123"
)

func (cli *commandLine) createAdmin() error {
	ctx := context.Background()

	count, err := cli.usrRepo.CountByRole(ctx, user.RoleAdmin)
	if err != nil {
		return errors.Wrap(err, "counting admins")
	}
	if count > 0 {
		fmt.Println("an admin account already exists; nothing to do")
		return nil
	}

	now := time.Now().UTC()
	usr := user.User{
		Username:  defaultAdminUsername,
		Email:     defaultAdminEmail,
		Role:      user.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = usr.SetPassword(defaultAdminPassword); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if usr, err = cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "creating admin")
	}

	fmt.Printf("created default admin %q (%s)\n", usr.Username, usr.Email)
	return nil
}
