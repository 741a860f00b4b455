package main

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/shulehq/shule/storage/database/migrations"
)

var gooseRunFunc = goose.Run // mockable

// migrate passes its arguments through to goose, running against the
// embedded migration files.
func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting dialect")
	}

	var db *sql.DB
	if cli.db != nil {
		db = cli.db.DB
	}
	return gooseRunFunc(args[0], db, ".", args[1:]...)
}
