package cmd

import (
	"context"
	"errors"
	"flag"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/vdl-data/lux-parking-poller/internal"
	"github.com/vdl-data/lux-parking-poller/internal/clock"
	"github.com/vdl-data/lux-parking-poller/internal/feed"
	"github.com/vdl-data/lux-parking-poller/internal/fetch"
	"github.com/vdl-data/lux-parking-poller/internal/log"
	"github.com/vdl-data/lux-parking-poller/internal/util"
)

type Options struct {
	FeedUrl string
	DbUrl   string
	DryRun  bool
}

// ParseFlags reads the CLI surface, falling back to the environment-backed
// config for anything not given on the command line.
func ParseFlags(config *util.Config) *Options {
	opts := &Options{}
	flag.StringVar(&opts.FeedUrl, "url", config.FeedUrl.Value, "vdl.lu RSS feed endpoint")
	flag.StringVar(&opts.DbUrl, "dburl", config.DbConnectionString.Value, "database connection string (DSN)")
	flag.BoolVar(&opts.DryRun, "dry", false, "poll and parse without writing to the database")
	flag.Parse()

	return opts
}

// Run drives the poll loop until ctx is cancelled: wait for the minute
// boundary, fetch, decode, normalize, commit. No failure inside a cycle
// stops the loop; the next tick is the retry.
func Run(ctx context.Context, connection bun.IDB, opts *Options) error {
	logger := log.GetLogger()

	if opts.DryRun {
		logger = log.AddGlobalField("DryRun", opts.DryRun)
	}

	fetcher := fetch.New(opts.FeedUrl)
	logger.WithField("FeedUrl", opts.FeedUrl).Info("poller started")

	for {
		tick, err := clock.WaitForNextTick(ctx)
		if err != nil {
			logger.Info("poller stopping")
			return nil
		}

		runCycle(ctx, connection, fetcher, opts, tick)
	}
}

func runCycle(ctx context.Context, connection bun.IDB, fetcher *fetch.Fetcher, opts *Options, tick time.Time) {
	logger := log.GetLogger()

	body, err := fetcher.Fetch(ctx)
	if err != nil {
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) {
			logger.WithFields(logrus.Fields{
				"StatusCode": statusErr.Code,
				"Body":       statusErr.Body,
			}).Error("unexpected HTTP status code from feed")
		} else {
			logger.WithError(err).Error("feed request failed")
		}
		return
	}
	logger.Info("new RSS feed received successfully")

	entries, err := feed.Decode(body)
	if err != nil {
		logger.WithError(err).Error("feed decode failed")
		return
	}

	result := internal.CollectCycle(entries, tick, func(err error) {
		var nerr *internal.NormalizeError
		name := "unknown parking"
		if errors.As(err, &nerr) && nerr.LotName != "" {
			name = nerr.LotName
		}

		if errors.Is(err, internal.ErrNotYetUsable) {
			logger.WithField("Lot", name).Warn("parking not yet usable, skipping")
			return
		}

		logger.WithField("Lot", name).WithError(err).Error("processing feed entry failed")
	})

	for i, lot := range result.Lots {
		reading := result.Readings[i]
		logger.WithFields(logrus.Fields{
			"Lot":   lot.Name,
			"LotId": lot.Id,
			"Free":  fmtCount(reading.Free),
			"Total": fmtCount(reading.Total),
		}).Info("parking occupancy")
	}

	if opts.DryRun {
		logger.Debug("dry run, skipping save")
	} else if err := internal.SaveCycle(ctx, connection, result); err != nil {
		logger.WithError(err).Error("saving cycle results failed")
		return
	}

	logger.WithFields(logrus.Fields{
		"LotCount":     len(result.Lots),
		"SkippedCount": result.Skipped,
		"FailedCount":  result.Failed,
	}).Info("cycle complete")
}

func fmtCount(v *int) string {
	if v == nil {
		return "null"
	}

	return strconv.Itoa(*v)
}
