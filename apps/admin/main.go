package main

import (
	"log"
	"os"

	echoapi "github.com/signquick/signquick/apps/api/echo"
	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/sign"
	"github.com/signquick/signquick/core/user"
	docsvc "github.com/signquick/signquick/services/document"
	"github.com/signquick/signquick/storage/database"
	sqlxrepos "github.com/signquick/signquick/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err)
	}
	if err = database.Ping(db); err != nil {
		_ = db.Close()
		logger.Fatal(err)
	}

	// start CLI
	validate, _ := echoapi.NewValidator()
	signSvc := sign.NewService(db, sqlxrepos.NewSignRepository(db), docsvc.NewSheetCodec())
	cli := commandLine{
		db:       db,
		usrSvc:   user.NewService(db, sqlxrepos.NewUserRepository(db), signSvc.SeedDefaults),
		signSvc:  signSvc,
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
