package internal

import "time"

// BeggenLotId is the id forced onto the lot named "Beggen". The feed ships
// a missing or wrong id for that one site (known upstream bug), so the name
// match below wins over whatever the id field says.
const (
	BeggenLotName = "Beggen"
	BeggenLotId   = 0
)

// Lot is the current state of one parking facility, upserted every cycle.
// Coordinates are always set: entries without them never make it past
// Normalize.
type Lot struct {
	Id        int
	Name      string
	Latitude  float64
	Longitude float64
	Price     string
	Info      string
}

// Reading is one timestamped occupancy observation, append-only. Nil
// pointers mean the feed supplied an empty value, never zero.
type Reading struct {
	LotId    int
	Free     *int
	Total    *int
	Full     *bool
	PolledAt time.Time
}
