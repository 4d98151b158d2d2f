package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/vdl-data/lux-parking-poller/internal/db"
	"github.com/vdl-data/lux-parking-poller/internal/feed"
)

// CycleResult is everything one poll cycle produced: the batch to persist
// plus counters for the summary log line.
type CycleResult struct {
	Lots     []*Lot
	Readings []*Reading
	Skipped  int
	Failed   int
}

// CollectCycle normalizes a decoded batch, reporting each per-entry failure
// through onError and carrying on with the remaining entries.
func CollectCycle(entries []feed.RawEntry, tick time.Time, onError func(error)) *CycleResult {
	result := &CycleResult{}

	for _, entry := range entries {
		lot, reading, err := Normalize(entry, tick)
		if err != nil {
			if errors.Is(err, ErrNotYetUsable) {
				result.Skipped++
			} else {
				result.Failed++
			}
			if onError != nil {
				onError(err)
			}
			continue
		}

		result.Lots = append(result.Lots, lot)
		result.Readings = append(result.Readings, reading)
	}

	return result
}

// SaveCycle writes the whole batch in one transaction: lots upserted by id,
// readings appended. Rolled back as a unit on any database error.
func SaveCycle(ctx context.Context, connection bun.IDB, result *CycleResult) error {
	lots := make([]*db.LotModel, 0, len(result.Lots))
	for _, lot := range result.Lots {
		lat := lot.Latitude
		lon := lot.Longitude
		lots = append(lots, &db.LotModel{
			Id:        lot.Id,
			Name:      lot.Name,
			Latitude:  &lat,
			Longitude: &lon,
			Price:     lot.Price,
			Info:      lot.Info,
		})
	}

	readings := make([]*db.ReadingModel, 0, len(result.Readings))
	for _, reading := range result.Readings {
		readings = append(readings, &db.ReadingModel{
			LotId:    reading.LotId,
			Free:     reading.Free,
			Total:    reading.Total,
			Full:     reading.Full,
			PolledAt: reading.PolledAt,
		})
	}

	if err := db.CommitCycle(ctx, connection, lots, readings); err != nil {
		return fmt.Errorf("error saving cycle results: %w", err)
	}

	return nil
}
