// Package eventstore keeps a local copy of fetched compass events so they can
// be served without logging into the portal again.
package eventstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bellweaver-backend/internal/components/assert"
	"bellweaver-backend/internal/components/telemetry"
	"bellweaver-backend/internal/scrapers/compass"
)

const (
	report_store_push  = "store.push"
	report_store_range = "store.range"
	report_store_prune = "store.prune"
)

type Store struct {
	db  *sql.DB
	qry *Queries
	loc *time.Location
	tel telemetry.API
}

// NewStore creates a store on an opened database, zoneless event timestamps
// are read in `loc`.
func NewStore(database *sql.DB, loc *time.Location, tel telemetry.API) Store {
	assert.NotNil(database)
	assert.NotNil(tel)
	if loc == nil {
		loc = time.UTC
	}
	return Store{
		db:  database,
		qry: newQueries(database),
		loc: loc,
		tel: telemetry.NewScopedAPI("eventstore", tel),
	}
}

// Push upserts the events in a single transaction and returns how many were
// stored. Events without an id or with an unparseable start are skipped.
func (s Store) Push(ctx context.Context, fetchedAt time.Time, events []compass.Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.tel.ReportBroken(report_store_push, fmt.Errorf("begin tx: %w", err))
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	stored := 0
	for i, event := range events {
		id := event.Id()
		if id == "" {
			s.tel.ReportWarning(report_store_push, fmt.Errorf("event %d has no id", i))
			continue
		}
		start, err := event.Start(s.loc)
		if err != nil {
			s.tel.ReportWarning(report_store_push, err, id)
			continue
		}
		finish, err := event.Finish(s.loc)
		if err != nil || finish.Before(start) {
			finish = start
		}

		raw, err := json.Marshal(event)
		if err != nil {
			s.tel.ReportWarning(report_store_push, fmt.Errorf("json marshal: %w", err), id)
			continue
		}

		err = txqry.UpsertEvent(ctx, upsertEventParams{
			Id:        id,
			Title:     event.Title(),
			Start:     start.Unix(),
			Finish:    finish.Unix(),
			AllDay:    event.AllDay(),
			Raw:       string(raw),
			FetchedAt: fetchedAt.Unix(),
		})
		if err != nil {
			s.tel.ReportBroken(report_store_push, err, id)
			return 0, err
		}
		stored++
	}

	err = tx.Commit()
	if err != nil {
		s.tel.ReportBroken(report_store_push, fmt.Errorf("commit: %w", err))
		return 0, err
	}
	s.tel.ReportCount(report_store_push, int64(stored))
	return stored, nil
}

// Range returns the stored events starting within [from, to], ordered by
// start and then id.
func (s Store) Range(ctx context.Context, from, to time.Time) ([]compass.Event, error) {
	rows, err := s.qry.GetEventsBetween(ctx, from.Unix(), to.Unix())
	if err != nil {
		s.tel.ReportBroken(report_store_range, err)
		return nil, err
	}

	events := make([]compass.Event, 0, len(rows))
	for _, raw := range rows {
		decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
		decoder.UseNumber()

		var event compass.Event
		err := decoder.Decode(&event)
		if err != nil {
			s.tel.ReportBroken(report_store_range, fmt.Errorf("decode stored event: %w", err))
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// Prune deletes every event that finished before `before`.
func (s Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	deleted, err := s.qry.DeleteEventsFinishedBefore(ctx, before.Unix())
	if err != nil {
		s.tel.ReportBroken(report_store_prune, err)
		return 0, err
	}
	s.tel.ReportDebug(report_store_prune, deleted)
	return deleted, nil
}
