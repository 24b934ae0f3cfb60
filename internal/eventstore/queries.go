package eventstore

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func newQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertEvent = `
insert into calendar_event (id, title, start, finish, all_day, raw, fetched_at)
values (?, ?, ?, ?, ?, ?, ?)
on conflict (id) do update set
    title = excluded.title,
    start = excluded.start,
    finish = excluded.finish,
    all_day = excluded.all_day,
    raw = excluded.raw,
    fetched_at = excluded.fetched_at
`

type upsertEventParams struct {
	Id        string
	Title     string
	Start     int64
	Finish    int64
	AllDay    bool
	Raw       string
	FetchedAt int64
}

func (q *Queries) UpsertEvent(ctx context.Context, arg upsertEventParams) error {
	_, err := q.db.ExecContext(
		ctx, upsertEvent,
		arg.Id,
		arg.Title,
		arg.Start,
		arg.Finish,
		arg.AllDay,
		arg.Raw,
		arg.FetchedAt,
	)
	return err
}

const getEventsBetween = `
select raw from calendar_event
where start >= ? and start <= ?
order by start, id
`

func (q *Queries) GetEventsBetween(ctx context.Context, from, to int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getEventsBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var raw string
		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}
		items = append(items, raw)
	}
	err = rows.Close()
	if err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const deleteEventsFinishedBefore = `
delete from calendar_event where finish < ?
`

func (q *Queries) DeleteEventsFinishedBefore(ctx context.Context, before int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsFinishedBefore, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
