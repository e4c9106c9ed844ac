package logsvc

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	// reporting is off until enabled
	rollbar.SetEnabled(false)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, account.Account
// The account is never printed: it becomes the Rollbar person of this item only, and the `account` log field.
func (l RollbarLogger) prepare(msg string, args []interface{}) (rbArgs, logArgs []interface{}) {
	var accSet bool
	rbArgs = make([]interface{}, 0, len(args)+2)
	rbArgs = append(rbArgs, msg)
	logArgs = make([]interface{}, 0, len(args))
	for _, arg := range args {
		// set logged in Account
		if acc, ok := arg.(account.Account); ok {
			if !accSet { // only set one Account
				rbArgs = append(rbArgs, rollbar.NewPersonContext(context.Background(), &rollbar.Person{
					Id:       strconv.FormatInt(acc.ID, 10),
					Username: acc.Identifier(),
				}))
				logArgs = append(logArgs, "account: "+acc.Identifier())
				accSet = true
			}
			continue
		}
		rbArgs = append(rbArgs, arg)
		logArgs = append(logArgs, arg)
	}
	return rbArgs, logArgs
}

// print writes to std on behalf of the caller of a level method.
func (l RollbarLogger) print(level, msg string, args []interface{}) {
	const calldepth = 3 // print, level method, caller
	_ = l.std.Output(calldepth, fmt.Sprintf("%s: %s\n", level, msg))
	for _, arg := range args {
		_ = l.std.Output(calldepth, fmt.Sprintf("%+v\n", arg))
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, logArgs := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.print("DEBUG", msg, logArgs)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, logArgs := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.print("INFO", msg, logArgs)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, logArgs := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.print("WARN", msg, logArgs)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, logArgs := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.print("ERROR", msg, logArgs)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, logArgs := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	l.print("FATAL", msg, logArgs)
	rollbar.Wait()
	l.std.Fatal(msg)
}
