package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/storage/database"
	sqlxrepos "github.com/madamaths/madamaths/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db,
		accSvc:   account.NewService(sqlxrepos.NewAccountRepository(db), conf),
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
