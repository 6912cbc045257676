// Command admin holds maintenance tasks for THS operators.
package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/user"
	logsvc "github.com/Treasure123-school/THS/services/logger"
	"github.com/Treasure123-school/THS/storage/redisdb"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(false)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	// start CLI
	cli := commandLine{
		validate:   validate,
		translator: translator,
		purgeSessions: func(ctx context.Context) (int, error) {
			if conf.Session.Backend != core.SessionBackendRedis {
				return 0, errors.Errorf("sessions are kept in %s: restart the API to end them", conf.Session.Backend)
			}
			client, err := redisdb.Open(ctx, conf.Session.RedisURL)
			if err != nil {
				return 0, err
			}
			//goland:noinspection GoUnhandledErrorResult
			defer client.Close()
			return redisdb.PurgeSessions(ctx, client)
		},
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
