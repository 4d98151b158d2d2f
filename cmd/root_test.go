package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/vdl-data/lux-parking-poller/internal/db"
	"github.com/vdl-data/lux-parking-poller/internal/fetch"
	"github.com/vdl-data/lux-parking-poller/internal/log"
	"github.com/vdl-data/lux-parking-poller/internal/util"
)

const feedHeader = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:vdlxml="http://www.vdl.lu/vdlxml">
  <channel>
    <title>Parkings de la Ville de Luxembourg</title>
    <link>http://www.vdl.lu</link>
    <description>Guidage parking</description>
`

const feedFooter = `  </channel>
</rss>`

func feedItem(title, id, free, total, lat, long string) string {
	return fmt.Sprintf(`    <item>
      <title>%s</title>
      <guid isPermaLink="false">%s</guid>
      <vdlxml:actuel>%s</vdlxml:actuel>
      <vdlxml:total>%s</vdlxml:total>
      <vdlxml:complet>0</vdlxml:complet>
      <vdlxml:divers></vdlxml:divers>
      <vdlxml:paiement>payant</vdlxml:paiement>
      <vdlxml:localisationlatitude>%s</vdlxml:localisationlatitude>
      <vdlxml:localisationlongitude>%s</vdlxml:localisationlongitude>
    </item>
`, title, id, free, total, lat, long)
}

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDb, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDb.SetMaxOpenConns(1)

	conn := bun.NewDB(sqlDb, sqlitedialect.New())
	if err := db.InitSchema(context.Background(), conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	return conn
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func countRows(t *testing.T, conn *bun.DB, model interface{}) int {
	t.Helper()

	n, err := conn.NewSelect().Model(model).Count(context.Background())
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}

	return n
}

func TestRunCycleSkipsUnusableLot(t *testing.T) {
	log.InitLogger(util.GetConfig())

	body := feedHeader +
		feedItem("Knuedler", "4", "102", "350", "49.6106", "6.1308") +
		feedItem("Glacis", "7", "12", "1007", "49.6181", "6.1232") +
		feedItem("Monterey", "9", "55", "100", "", "") +
		feedFooter
	srv := serveFeed(t, body)
	conn := setupTestDB(t)

	tick := time.Date(2024, 3, 14, 12, 1, 0, 0, time.UTC)
	runCycle(context.Background(), conn, fetch.New(srv.URL), &Options{FeedUrl: srv.URL}, tick)

	if got := countRows(t, conn, (*db.LotModel)(nil)); got != 2 {
		t.Errorf("lot count = %d, want 2", got)
	}
	if got := countRows(t, conn, (*db.ReadingModel)(nil)); got != 2 {
		t.Errorf("reading count = %d, want 2", got)
	}
}

func TestRunCycleIsolatesBadEntry(t *testing.T) {
	log.InitLogger(util.GetConfig())

	body := feedHeader +
		feedItem("Knuedler", "4", "102", "350", "49.6106", "6.1308") +
		feedItem("Broken", "abc", "1", "2", "49.6", "6.1") +
		feedItem("Glacis", "7", "12", "1007", "49.6181", "6.1232") +
		feedFooter
	srv := serveFeed(t, body)
	conn := setupTestDB(t)

	tick := time.Date(2024, 3, 14, 12, 1, 0, 0, time.UTC)
	runCycle(context.Background(), conn, fetch.New(srv.URL), &Options{FeedUrl: srv.URL}, tick)

	if got := countRows(t, conn, (*db.LotModel)(nil)); got != 2 {
		t.Errorf("lot count = %d, want 2", got)
	}
	if got := countRows(t, conn, (*db.ReadingModel)(nil)); got != 2 {
		t.Errorf("reading count = %d, want 2", got)
	}
}

func TestRunCycleFeedUnavailable(t *testing.T) {
	log.InitLogger(util.GetConfig())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	conn := setupTestDB(t)

	tick := time.Date(2024, 3, 14, 12, 1, 0, 0, time.UTC)
	runCycle(context.Background(), conn, fetch.New(srv.URL), &Options{FeedUrl: srv.URL}, tick)

	if got := countRows(t, conn, (*db.LotModel)(nil)); got != 0 {
		t.Errorf("lot count = %d, want 0 after failed fetch", got)
	}
}

func TestRunCycleDryRun(t *testing.T) {
	log.InitLogger(util.GetConfig())

	body := feedHeader +
		feedItem("Knuedler", "4", "102", "350", "49.6106", "6.1308") +
		feedFooter
	srv := serveFeed(t, body)
	conn := setupTestDB(t)

	tick := time.Date(2024, 3, 14, 12, 1, 0, 0, time.UTC)
	runCycle(context.Background(), conn, fetch.New(srv.URL), &Options{FeedUrl: srv.URL, DryRun: true}, tick)

	if got := countRows(t, conn, (*db.LotModel)(nil)); got != 0 {
		t.Errorf("lot count = %d, want 0 on dry run", got)
	}
}
