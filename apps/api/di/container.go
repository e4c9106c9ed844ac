package di

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/madamaths/madamaths/apps/api/echo"
	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/content"
	"github.com/madamaths/madamaths/core/coursework"
	"github.com/madamaths/madamaths/core/message"
	logsvc "github.com/madamaths/madamaths/services/logger"
	"github.com/madamaths/madamaths/storage/database"
	sqlxrepos "github.com/madamaths/madamaths/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In
	Config        *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	Tokens        *account.TokenService
	AccountSvc    *account.Service
	ContentSvc    *content.Service
	CourseworkSvc *coursework.Service
	MessageSvc    *message.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	return validate
}

func newExerciseGetter(svc *content.Service) coursework.ExerciseGetter {
	return svc
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Deps{
		Config:        p.Config,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Tokens:        p.Tokens,
		AccountSvc:    p.AccountSvc,
		ContentSvc:    p.ContentSvc,
		CourseworkSvc: p.CourseworkSvc,
		MessageSvc:    p.MessageSvc,
	})
}

// New returns a new dependency injection dig.Container built around conf.
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))

	// repositories
	must(c.Provide(sqlxrepos.NewAccountRepository, dig.As(new(account.Repository))))
	must(c.Provide(sqlxrepos.NewContentRepository, dig.As(new(content.Repository))))
	must(c.Provide(sqlxrepos.NewCourseworkRepository, dig.As(new(coursework.Repository))))
	must(c.Provide(sqlxrepos.NewMessageRepository, dig.As(new(message.Repository))))

	// services
	must(c.Provide(account.NewService))
	must(c.Provide(account.NewTokenService))
	must(c.Provide(content.NewService))
	must(c.Provide(newExerciseGetter))
	must(c.Provide(coursework.NewService))
	must(c.Provide(message.NewService))

	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
