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

	echoapi "github.com/theadruss/Clix-App/apps/api/echo"
	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
	"github.com/theadruss/Clix-App/core/volunteer"
	emailsvc "github.com/theadruss/Clix-App/services/email"
	genaisvc "github.com/theadruss/Clix-App/services/genai"
	logsvc "github.com/theadruss/Clix-App/services/logger"
	"github.com/theadruss/Clix-App/services/ratelimit"
	"github.com/theadruss/Clix-App/storage/database"
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
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	repos, err := database.Setup(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	assistant, err := genaisvc.New(context.Background(), conf.GenAI, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up assistant: %v", err), err)
	}

	limiter, err := ratelimit.New(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up rate limiter: %v", err), err)
	}

	usrSvc := user.NewService(repos.Users, mailSvc, conf)
	eventSvc := event.NewService(repos.Events, repos.Clubs, repos.Venues, usrSvc, assistant, mailSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : %s", conf))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	volunteer.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger, true)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dbEngine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			Limiter:    limiter,
			Assistant:  assistant,

			UserSvc:         usrSvc,
			ClubSvc:         club.NewService(repos.Clubs, usrSvc, conf.MemberCountMode),
			VenueSvc:        venue.NewService(repos.Venues),
			EventSvc:        eventSvc,
			VolunteerSvc:    volunteer.NewService(repos.Volunteers, repos.Events, repos.Users, mailSvc),
			SocialSvc:       social.NewService(repos.Social, repos.Clubs),
			AnnouncementSvc: announcement.NewService(repos.Announcements),
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

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
