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

	echoapi "github.com/Treasure123-school/THS/apps/api/echo"
	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/auth"
	"github.com/Treasure123-school/THS/core/contact"
	"github.com/Treasure123-school/THS/core/gallery"
	"github.com/Treasure123-school/THS/core/session"
	"github.com/Treasure123-school/THS/core/user"
	emailsvc "github.com/Treasure123-school/THS/services/email"
	eventsvc "github.com/Treasure123-school/THS/services/events"
	feedsvc "github.com/Treasure123-school/THS/services/feed"
	logsvc "github.com/Treasure123-school/THS/services/logger"
	inmemdb "github.com/Treasure123-school/THS/storage/inmem"
	"github.com/Treasure123-school/THS/storage/redisdb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up store
	db := inmemdb.Open()
	if conf.Seed.Enabled {
		if err := inmemdb.Seed(ctx, db, conf.Seed.DemoPassword); err != nil {
			logger.Fatal(fmt.Sprintf("seeding demo data: %v", err), err)
		}
		logger.Info("Demo accounts seeded")
	}

	var sessRepo session.Repository
	switch conf.Session.Backend {
	case core.SessionBackendRedis:
		client, err := redisdb.Open(ctx, conf.Session.RedisURL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
		defer func() {
			if err = client.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing redis client: %v", err), err)
			}
		}()
		sessRepo = redisdb.NewSessionRepository(client)
	default:
		sessRepo = inmemdb.NewSessionRepository(db)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	bus := eventsvc.NewBus(conf, logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing event bus: %v", err), err)
		}
	}()

	usrSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc, conf)
	sessSvc := session.NewService(sessRepo, conf.Session.Lifetime)
	contactSvc := contact.NewService(inmemdb.NewContactRepository(db), bus, mailSvc, conf, logger)
	hub := feedsvc.NewHub(logger)

	subscriptions := map[string]eventsvc.HandlerFunc{
		core.TopicAnnouncementCreated: hub.HandleEvent,
		core.TopicAnnouncementUpdated: hub.HandleEvent,
		core.TopicAnnouncementDeleted: hub.HandleEvent,
		core.TopicContactSubmitted:    contactSvc.HandleSubmitted,
	}
	for topic, handler := range subscriptions {
		if err := bus.Subscribe(ctx, topic, handler); err != nil {
			logger.Fatal(fmt.Sprintf("subscribing to %s: %v", topic, err), err)
		}
	}
	go hub.Run(ctx)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	if err := core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("sessionBackend").Set(conf.Session.Backend)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			AuthSvc:         auth.NewService(usrSvc, sessSvc),
			UserSvc:         usrSvc,
			AnnouncementSvc: announcement.NewService(inmemdb.NewAnnouncementRepository(db), bus, logger),
			GallerySvc:      gallery.NewService(inmemdb.NewGalleryRepository(db)),
			ContactSvc:      contactSvc,
			FeedHub:         hub,
			Validate:        validate,
			Translator:      translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer shutdownCancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
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
