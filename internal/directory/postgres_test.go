package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestLoadPostgres(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	visit := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	notes := "Aime les dégradés."

	mock.ExpectQuery(`SELECT id, name, address, phone, notify_email\s+FROM salons`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "address", "phone", "notify_email"}).
			AddRow("plateau", "Barbier du Plateau", "4521 rue Saint-Denis", "+15145550101", "plateau@example.com"))
	mock.ExpectQuery(`SELECT salon_id, name, specialty, price, aliases\s+FROM barbiers`).
		WillReturnRows(pgxmock.NewRows([]string{"salon_id", "name", "specialty", "price", "aliases"}).
			AddRow("plateau", "Marco", "coupe homme", "30 $", []string{"marcus"}))
	mock.ExpectQuery(`SELECT phone, name, preferred_service, preferred_barber, last_visit, notes\s+FROM callers`).
		WillReturnRows(pgxmock.NewRows([]string{"phone", "name", "preferred_service", "preferred_barber", "last_visit", "notes"}).
			AddRow("+15145551234", "Jean Tremblay", "coupe homme", "Marco", &visit, &notes).
			AddRow("+15145555678", "Marie Gagnon", "coloration", "Sophie", (*time.Time)(nil), (*string)(nil)))

	dir, err := LoadPostgres(context.Background(), mock)
	if err != nil {
		t.Fatalf("LoadPostgres failed: %v", err)
	}

	caller, ok := dir.LookupCaller("514-555-1234")
	if !ok {
		t.Fatalf("expected caller to be found")
	}
	if !caller.LastVisit.Equal(visit) {
		t.Errorf("LastVisit = %v, want %v", caller.LastVisit, visit)
	}
	if caller.Notes != notes {
		t.Errorf("Notes = %q, want %q", caller.Notes, notes)
	}
	marie, ok := dir.LookupCaller("+15145555678")
	if !ok || !marie.LastVisit.IsZero() || marie.Notes != "" {
		t.Errorf("unexpected caller %+v (found=%v)", marie, ok)
	}

	match, ok := dir.LookupBarbierByName("marcus")
	if !ok || match.Barbier.Name != "Marco" || match.SalonID != "plateau" {
		t.Errorf("unexpected barbier match %+v (found=%v)", match, ok)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLoadPostgresUnknownSalon(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM salons`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "address", "phone", "notify_email"}).
			AddRow("plateau", "Barbier du Plateau", "", "", ""))
	mock.ExpectQuery(`FROM barbiers`).
		WillReturnRows(pgxmock.NewRows([]string{"salon_id", "name", "specialty", "price", "aliases"}).
			AddRow("laval", "Ghost", "", "", []string{}))

	if _, err := LoadPostgres(context.Background(), mock); err == nil {
		t.Fatal("expected error for barbier in unknown salon")
	}
}

func TestLoadPostgresQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM salons`).WillReturnError(errors.New("connection refused"))

	if _, err := LoadPostgres(context.Background(), mock); err == nil {
		t.Fatal("expected error")
	}
}
