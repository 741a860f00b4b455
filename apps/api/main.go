package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/shulehq/shule/apps/api/echo"
	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/assignment"
	"github.com/shulehq/shule/core/course"
	"github.com/shulehq/shule/core/record"
	"github.com/shulehq/shule/core/report"
	"github.com/shulehq/shule/core/user"
	emailsvc "github.com/shulehq/shule/services/email"
	"github.com/shulehq/shule/services/filestore"
	logsvc "github.com/shulehq/shule/services/logger"
	"github.com/shulehq/shule/storage/database"
	"github.com/shulehq/shule/storage/database/sqlxrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	var files core.FileStore
	if conf.FileStore.OSSBucket != "" {
		if files, err = filestore.NewOSSStore(conf); err != nil {
			logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
		}
	} else {
		files = filestore.NewDiskStore(conf)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	asgRepo := sqlxrepos.NewAssignmentRepository(db)
	recRepo := sqlxrepos.NewRecordRepository(db)

	usrSvc := user.NewService(db, usrRepo, mailSvc, conf)
	crsSvc := course.NewService(crsRepo, usrRepo, files)
	asgSvc := assignment.NewService(asgRepo, crsRepo, files)
	recSvc := record.NewService(recRepo, crsRepo, usrRepo)
	repSvc := report.NewService(usrRepo, crsRepo, asgRepo, recRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			CourseSvc:     crsSvc,
			AssignmentSvc: asgSvc,
			RecordSvc:     recSvc,
			ReportSvc:     repSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
