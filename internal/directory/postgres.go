package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool used to load the directory.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	selectSalonsSQL = `SELECT id, name, address, phone, notify_email
FROM salons ORDER BY position, id`
	selectBarbiersSQL = `SELECT salon_id, name, specialty, price, aliases
FROM barbiers ORDER BY salon_id, position, name`
	selectCallersSQL = `SELECT phone, name, preferred_service, preferred_barber, last_visit, notes
FROM callers ORDER BY phone`
)

// LoadPostgres reads salons, barbiers and callers once and returns an
// in-memory Directory.
func LoadPostgres(ctx context.Context, q Querier) (*Directory, error) {
	salons, err := loadSalons(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := attachBarbiers(ctx, q, salons); err != nil {
		return nil, err
	}
	callers, err := loadCallers(ctx, q)
	if err != nil {
		return nil, err
	}
	return New(salons, callers), nil
}

func loadSalons(ctx context.Context, q Querier) ([]Salon, error) {
	rows, err := q.Query(ctx, selectSalonsSQL)
	if err != nil {
		return nil, fmt.Errorf("directory: query salons: %w", err)
	}
	defer rows.Close()

	var salons []Salon
	for rows.Next() {
		var s Salon
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.NotifyEmail); err != nil {
			return nil, fmt.Errorf("directory: scan salon: %w", err)
		}
		salons = append(salons, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: iterate salons: %w", err)
	}
	return salons, nil
}

func attachBarbiers(ctx context.Context, q Querier, salons []Salon) error {
	rows, err := q.Query(ctx, selectBarbiersSQL)
	if err != nil {
		return fmt.Errorf("directory: query barbiers: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int, len(salons))
	for i, s := range salons {
		index[s.ID] = i
	}
	for rows.Next() {
		var (
			salonID string
			b       Barbier
		)
		if err := rows.Scan(&salonID, &b.Name, &b.Specialty, &b.Price, &b.Aliases); err != nil {
			return fmt.Errorf("directory: scan barbier: %w", err)
		}
		i, ok := index[salonID]
		if !ok {
			return fmt.Errorf("directory: barbier %q references unknown salon %q", b.Name, salonID)
		}
		salons[i].Barbiers = append(salons[i].Barbiers, b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("directory: iterate barbiers: %w", err)
	}
	return nil
}

func loadCallers(ctx context.Context, q Querier) ([]Caller, error) {
	rows, err := q.Query(ctx, selectCallersSQL)
	if err != nil {
		return nil, fmt.Errorf("directory: query callers: %w", err)
	}
	defer rows.Close()

	var callers []Caller
	for rows.Next() {
		var (
			c         Caller
			lastVisit *time.Time
			notes     *string
		)
		if err := rows.Scan(&c.Phone, &c.Name, &c.PreferredService, &c.PreferredBarber, &lastVisit, &notes); err != nil {
			return nil, fmt.Errorf("directory: scan caller: %w", err)
		}
		if lastVisit != nil {
			c.LastVisit = *lastVisit
		}
		if notes != nil {
			c.Notes = *notes
		}
		callers = append(callers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: iterate callers: %w", err)
	}
	return callers, nil
}
