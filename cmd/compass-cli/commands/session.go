package commands

import (
	"context"
	"fmt"
	"time"

	"bellweaver-backend/internal/components/telemetry"
	"bellweaver-backend/internal/dateparse"
	"bellweaver-backend/internal/scrapers/compass"
)

const loginTimeout = time.Second * 30

func newClient(cfg CompassConfig, tel telemetry.API) (compass.API, error) {
	opts := compass.ClientOptions{
		BaseUrl:          cfg.BaseUrl,
		Username:         cfg.Username,
		Password:         cfg.Password,
		CloudflareBypass: cfg.CloudflareBypass,
		RedirectHosts:    cfg.RedirectHosts,
	}
	if cfg.Mock {
		return compass.NewMockClient(opts, tel), nil
	}
	return compass.NewClient(opts, tel)
}

// login creates the configured client and logs in, the caller must Close it.
func login(ctx context.Context, env environment) (compass.API, error) {
	client, err := newClient(env.config.Compass, env.tel)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	err = client.Login(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

type dateRange struct {
	From time.Time
	To   time.Time
}

func (r dateRange) startDate() string {
	return dateparse.FormatDate(r.From)
}

func (r dateRange) endDate() string {
	return dateparse.FormatDate(r.To)
}

// resolveRange parses the --from and --to flags, an empty `to` selects
// `days` days after `from`.
func resolveRange(from, to string, days int, now time.Time) (dateRange, error) {
	start, err := dateparse.Parse(from, now)
	if err != nil {
		return dateRange{}, fmt.Errorf("--from: %w", err)
	}
	start = dateparse.StartOfDay(start.In(now.Location()))

	end := start.AddDate(0, 0, days)
	if to != "" {
		end, err = dateparse.Parse(to, start)
		if err != nil {
			return dateRange{}, fmt.Errorf("--to: %w", err)
		}
		end = dateparse.StartOfDay(end.In(now.Location()))
	}
	if end.Before(start) {
		return dateRange{}, fmt.Errorf("--to (%s) is before --from (%s)", dateparse.FormatDate(end), dateparse.FormatDate(start))
	}
	return dateRange{From: start, To: end}, nil
}

// fetch logs in and returns the events within the range.
func fetch(ctx context.Context, env environment, r dateRange, limit int) ([]compass.Event, error) {
	client, err := login(ctx, env)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return client.CalendarEvents(ctx, r.startDate(), r.endDate(), limit)
}
