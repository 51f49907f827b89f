package normalize

import (
	"errors"
	"testing"
	"time"
)

func TestDateNormalize_TableDriven(t *testing.T) {
	d := NewDateNormalizer(2010, 2030, nil)
	typed := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      interface{}
		want    time.Time
		wantErr error
	}{
		{name: "typed_time", in: typed, want: typed},
		{name: "typed_pointer", in: &typed, want: typed},
		{name: "iso_datetime", in: "2024-01-10 08:30:00", want: typed},
		{name: "iso_t_separator", in: "2024-01-10T08:30:00", want: typed},
		{name: "rfc3339", in: "2024-01-10T08:30:00Z", want: typed},
		{name: "date_only", in: "2024-01-10", want: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "day_first_slash", in: "10/01/2024", want: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "month_first_fallback", in: "01/25/2024", want: time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)},
		{name: "dotted", in: "10.01.2024", want: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "bytes", in: []byte("2024-01-10"), want: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "padded", in: "  2024-01-10  ", want: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "year_min_inclusive", in: "2010-01-01", want: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "year_max_inclusive", in: "2030-12-31 23:59:59", want: time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC)},
		{name: "nil", in: nil, wantErr: ErrEmptyDate},
		{name: "blank", in: "  ", wantErr: ErrEmptyDate},
		{name: "zero_time", in: time.Time{}, wantErr: ErrEmptyDate},
		{name: "garbage", in: "not a date", wantErr: ErrUnparseableDate},
		{name: "unsupported_type", in: 42, wantErr: ErrUnparseableDate},
		{name: "too_old", in: "2009-12-31", wantErr: ErrDateOutOfRange},
		{name: "too_new", in: "2031-01-01", wantErr: ErrDateOutOfRange},
		{name: "typo_year", in: "0224-01-10", wantErr: ErrDateOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Normalize(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Normalize(%v) err = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%v) unexpected err: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateNormalize_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2024, 3, 1, 23, 0, 0, 0, loc)

	got, err := NewDateNormalizer(1990, 2100, nil).Normalize(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Location() != loc || got.Hour() != 23 {
		t.Fatalf("location changed: %v", got)
	}
}

func TestDateNormalize_CustomLayouts(t *testing.T) {
	d := NewDateNormalizer(1990, 2100, []string{"02 Jan 2006 15:04"})
	got, err := d.Normalize("10 Jan 2024 08:30")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if want := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, err := d.Normalize("2024-01-10"); !errors.Is(err, ErrUnparseableDate) {
		t.Fatalf("err = %v, want ErrUnparseableDate", err)
	}
}
