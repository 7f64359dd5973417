package dashboard_test

import (
	"errors"
	"testing"
	"time"

	"resa/internal/dashboard"
	"resa/shared/constant"
)

func TestReservationValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  dashboard.Reservation
		wantErr error
	}{
		{
			name:   "valid record",
			record: dashboard.Reservation{ID: "res-1", Status: constant.StatusPending},
		},
		{
			name:    "missing id",
			record:  dashboard.Reservation{Status: constant.StatusPending},
			wantErr: dashboard.ErrMissingID,
		},
		{
			name:    "unknown status",
			record:  dashboard.Reservation{ID: "res-1", Status: "Archived"},
			wantErr: dashboard.ErrUnknownStatus,
		},
		{
			name:    "empty status",
			record:  dashboard.Reservation{ID: "res-1"},
			wantErr: dashboard.ErrUnknownStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReservationParseDate(t *testing.T) {
	r := dashboard.Reservation{Date: "10/09/2026"}

	parsed, ok := r.ParseDate()
	if !ok {
		t.Fatal("expected date to parse")
	}

	want := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Errorf("expected %v, got %v", want, parsed)
	}

	for _, bad := range []string{"", "2026-09-10", "31/02/2026", "soon"} {
		r := dashboard.Reservation{Date: bad}
		if _, ok := r.ParseDate(); ok {
			t.Errorf("expected %q to fail parsing", bad)
		}
	}
}
