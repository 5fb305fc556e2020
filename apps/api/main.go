package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/signquick/signquick/apps/api/echo"
	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/catalog"
	"github.com/signquick/signquick/core/price"
	"github.com/signquick/signquick/core/quote"
	"github.com/signquick/signquick/core/sign"
	"github.com/signquick/signquick/core/user"
	docsvc "github.com/signquick/signquick/services/document"
	emailsvc "github.com/signquick/signquick/services/email"
	logsvc "github.com/signquick/signquick/services/logger"
	"github.com/signquick/signquick/storage/database"
	sqlxrepos "github.com/signquick/signquick/storage/database/sqlx"
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
	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

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
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	signSvc := sign.NewService(db, sqlxrepos.NewSignRepository(db), docsvc.NewSheetCodec())
	usrSvc := user.NewService(db, sqlxrepos.NewUserRepository(db), signSvc.SeedDefaults)
	priceSvc := price.NewService(sqlxrepos.NewPriceRepository(db))
	catalogSvc := catalog.NewService(db, sqlxrepos.NewCatalogRepository(db))
	quoteSvc := quote.NewService(db, sqlxrepos.NewQuoteRepository(db), docsvc.NewRenderer(conf), mailSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	if conf.Server.DebugAddr != "" {
		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		PriceSvc:   priceSvc,
		CatalogSvc: catalogSvc,
		SignSvc:    signSvc,
		QuoteSvc:   quoteSvc,
		Shutdown: func() {
			shutdown <- syscall.SIGTERM
		},
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Addr))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
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

	if err = database.Migrate(db, conf.Debug); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
