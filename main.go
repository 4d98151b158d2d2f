package main

import (
	"context"
	"github.com/vdl-data/lux-parking-poller/cmd"
	"github.com/vdl-data/lux-parking-poller/internal/db"
	"github.com/vdl-data/lux-parking-poller/internal/log"
	"github.com/vdl-data/lux-parking-poller/internal/util"
	"os"
	"os/signal"
	"syscall"
)

// Exit code for unrecoverable startup failures (bad DSN, schema init).
const exitCodeStartupFailure = 2

func main() {
	config := util.GetConfig()

	log.InitLogger(config)

	// log panic error
	defer func() {
		if r := recover(); r != nil {
			logger := log.GetLogger()
			logger.Panic(r)
		}
	}()

	opts := cmd.ParseFlags(config)
	logger := log.GetLogger()

	if opts.DbUrl == "" {
		logger.Errorln("no database connection string given, set --dburl or DB_CONNECTION_STRING")
		os.Exit(exitCodeStartupFailure)
	}

	connection, err := db.GetConnection(opts.DbUrl)
	if err != nil {
		// re-fetching logger to log with all fields appended during program run
		logger = log.GetLogger()
		logger.Errorln(err)
		os.Exit(exitCodeStartupFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = db.InitSchema(ctx, connection); err != nil {
		logger = log.GetLogger()
		logger.Errorln(err)
		os.Exit(exitCodeStartupFailure)
	}

	if err = cmd.Run(ctx, connection, opts); err != nil {
		logger = log.GetLogger()
		logger.Fatalln(err)
	}

	os.Exit(0)
}
