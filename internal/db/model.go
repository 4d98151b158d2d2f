package db

import (
	"github.com/uptrace/bun"
	"time"
)

type LotModel struct {
	bun.BaseModel `bun:"table:lots,alias:l"`
	Id            int      `bun:"id,pk"`
	Name          string   `bun:"name,notnull"`
	Latitude      *float64 `bun:"lat"`
	Longitude     *float64 `bun:"lon"`
	Price         string   `bun:"price"`
	Info          string   `bun:"info"`
}

type ReadingModel struct {
	bun.BaseModel `bun:"table:entries,alias:e"`
	Id            int64     `bun:"id,pk,autoincrement"`
	LotId         int       `bun:"park_id,notnull"`
	Free          *int      `bun:"free"`
	Total         *int      `bun:"total"`
	Full          *bool     `bun:"full"`
	PolledAt      time.Time `bun:"timestamp,notnull"`
}
