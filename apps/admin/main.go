package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/user"
	emailsvc "github.com/shulehq/shule/services/email"
	"github.com/shulehq/shule/storage/database"
	"github.com/shulehq/shule/storage/database/sqlxrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrRepo := sqlxrepos.NewUserRepository(db)

	// start CLI
	cli := commandLine{
		db:       db,
		usrRepo:  usrRepo,
		usrSvc:   user.NewService(db, usrRepo, emailsvc.NewConsoleService(conf), conf),
		validate: validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
