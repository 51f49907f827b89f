package usecase

import (
	"testing"
	"time"

	"agency-itinerary-service/internal/domain/entity"
)

func routeSeqs(routes []entity.Route) [][]int {
	out := make([][]int, len(routes))
	for i, r := range routes {
		for _, l := range r.Legs {
			out[i] = append(out[i], l.Seq)
		}
	}
	return out
}

func TestRouteSegmenter_Segment(t *testing.T) {
	tests := []struct {
		name   string
		gap    time.Duration
		anchor entity.AnchorPolicy
		legs   []entity.NormalizedLeg
		want   [][]int
	}{
		{
			name:   "single_leg",
			gap:    24 * time.Hour,
			anchor: entity.AnchorChain,
			legs:   []entity.NormalizedLeg{leg("TK6", day(2024, 1, 10), 0)},
			want:   [][]int{{0}},
		},
		{
			name:   "two_routes_chain",
			gap:    24 * time.Hour,
			anchor: entity.AnchorChain,
			legs: []entity.NormalizedLeg{
				leg("TK6", day(2024, 1, 10), 0),
				leg("TK7", day(2024, 1, 11), 1),
				leg("TK8", day(2024, 1, 20), 2),
			},
			want: [][]int{{0, 1}, {2}},
		},
		{
			name:   "unsorted_input_is_ordered",
			gap:    24 * time.Hour,
			anchor: entity.AnchorChain,
			legs: []entity.NormalizedLeg{
				leg("TK8", day(2024, 1, 20), 0),
				leg("TK7", day(2024, 1, 11), 1),
				leg("TK6", day(2024, 1, 10), 2),
			},
			want: [][]int{{2, 1}, {0}},
		},
		{
			name:   "ties_keep_column_order",
			gap:    24 * time.Hour,
			anchor: entity.AnchorChain,
			legs: []entity.NormalizedLeg{
				leg("TK7", day(2024, 1, 10), 0),
				leg("TK6", day(2024, 1, 10), 1),
			},
			want: [][]int{{0, 1}},
		},
		{
			name:   "chain_keeps_stepping",
			gap:    24 * time.Hour,
			anchor: entity.AnchorChain,
			legs: []entity.NormalizedLeg{
				leg("TK6", day(2024, 1, 10), 0),
				leg("TK7", day(2024, 1, 11), 1),
				leg("TK8", day(2024, 1, 12), 2),
			},
			want: [][]int{{0, 1, 2}},
		},
		{
			name:   "fixed_start_splits_same_data",
			gap:    24 * time.Hour,
			anchor: entity.AnchorFixedStart,
			legs: []entity.NormalizedLeg{
				leg("TK6", day(2024, 1, 10), 0),
				leg("TK7", day(2024, 1, 11), 1),
				leg("TK8", day(2024, 1, 12), 2),
			},
			want: [][]int{{0, 1}, {2}},
		},
		{
			name:   "fixed_start_resets_anchor_on_new_route",
			gap:    36 * time.Hour,
			anchor: entity.AnchorFixedStart,
			legs: []entity.NormalizedLeg{
				leg("TK6", day(2024, 1, 10), 0),
				leg("TK7", day(2024, 1, 12), 1),
				leg("TK8", day(2024, 1, 13), 2),
				leg("TK9", day(2024, 1, 14), 3),
			},
			want: [][]int{{0}, {1, 2}, {3}},
		},
		{
			name:   "last_route_emitted",
			gap:    36 * time.Hour,
			anchor: entity.AnchorChain,
			legs: []entity.NormalizedLeg{
				leg("TK6", day(2024, 1, 10), 0),
				leg("TK7", day(2024, 3, 1), 1),
			},
			want: [][]int{{0}, {1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := routeSeqs(NewRouteSegmenter(tt.gap, tt.anchor).Segment(tt.legs))
			if len(got) != len(tt.want) {
				t.Fatalf("got routes %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("got routes %v, want %v", got, tt.want)
				}
				for j := range tt.want[i] {
					if got[i][j] != tt.want[i][j] {
						t.Fatalf("got routes %v, want %v", got, tt.want)
					}
				}
			}
		})
	}
}

func TestRouteSegmenter_GapBoundary(t *testing.T) {
	start := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)
	for _, gap := range []time.Duration{24 * time.Hour, 36 * time.Hour} {
		for _, anchor := range []entity.AnchorPolicy{entity.AnchorChain, entity.AnchorFixedStart} {
			s := NewRouteSegmenter(gap, anchor)

			exact := s.Segment([]entity.NormalizedLeg{leg("TK6", start, 0), leg("TK7", start.Add(gap), 1)})
			if len(exact) != 1 {
				t.Errorf("%s/%s: legs exactly one gap apart split into %d routes", gap, anchor, len(exact))
			}

			over := s.Segment([]entity.NormalizedLeg{leg("TK6", start, 0), leg("TK7", start.Add(gap+time.Nanosecond), 1)})
			if len(over) != 2 {
				t.Errorf("%s/%s: legs gap+1ns apart gave %d routes, want 2", gap, anchor, len(over))
			}
		}
	}
}

func TestRouteSegmenter_Properties(t *testing.T) {
	base := day(2024, 6, 1)
	offsets := []time.Duration{0, 90 * time.Hour, 5 * time.Hour, 30 * time.Hour, 200 * time.Hour, 40 * time.Hour, 236 * time.Hour, 61 * time.Hour}
	var legs []entity.NormalizedLeg
	for i, off := range offsets {
		legs = append(legs, leg("TK1", base.Add(off), i))
	}

	gap := 36 * time.Hour
	routes := NewRouteSegmenter(gap, entity.AnchorChain).Segment(legs)

	total := 0
	for ri, r := range routes {
		if r.Len() == 0 {
			t.Fatalf("route %d is empty", ri)
		}
		total += r.Len()
		for i := 1; i < r.Len(); i++ {
			d := r.Legs[i].Date.Sub(r.Legs[i-1].Date)
			if d < 0 {
				t.Fatalf("route %d not ordered", ri)
			}
			if d > gap {
				t.Fatalf("route %d has an inner gap of %s", ri, d)
			}
		}
		if ri > 0 {
			prev := routes[ri-1]
			if d := r.Start().Sub(prev.Legs[prev.Len()-1].Date); d <= gap {
				t.Fatalf("boundary before route %d is only %s", ri, d)
			}
		}
	}
	if total != len(legs) {
		t.Fatalf("segmentation lost legs: %d of %d", total, len(legs))
	}
}

func TestRouteSegmenter_FixedStartProperties(t *testing.T) {
	base := day(2024, 6, 1)
	// a chain of 20h hops would stay one route under the chain anchor
	offsets := []time.Duration{0, 20 * time.Hour, 40 * time.Hour, 60 * time.Hour, 80 * time.Hour, 100 * time.Hour, 7 * time.Hour, 250 * time.Hour, 24 * time.Hour}
	var legs []entity.NormalizedLeg
	for i, off := range offsets {
		legs = append(legs, leg("TK1", base.Add(off), i))
	}

	gap := 24 * time.Hour
	routes := NewRouteSegmenter(gap, entity.AnchorFixedStart).Segment(legs)
	if len(routes) < 2 {
		t.Fatalf("got %d routes, fixed-start should split the hop chain", len(routes))
	}

	total := 0
	for ri, r := range routes {
		total += r.Len()
		for i := 1; i < r.Len(); i++ {
			if r.Legs[i].Date.Before(r.Legs[i-1].Date) {
				t.Fatalf("route %d not ordered", ri)
			}
			if d := r.Legs[i].Date.Sub(r.Start()); d > gap {
				t.Fatalf("route %d leg %d is %s after the route start", ri, i, d)
			}
		}
		if ri > 0 {
			if d := r.Start().Sub(routes[ri-1].Start()); d <= gap {
				t.Fatalf("route %d starts only %s after the previous route", ri, d)
			}
		}
	}
	if total != len(legs) {
		t.Fatalf("segmentation lost legs: %d of %d", total, len(legs))
	}
}

func TestRouteSegmenter_DoesNotModifyInput(t *testing.T) {
	legs := []entity.NormalizedLeg{leg("TK8", day(2024, 1, 20), 0), leg("TK6", day(2024, 1, 10), 1)}
	NewRouteSegmenter(24*time.Hour, entity.AnchorChain).Segment(legs)
	if legs[0].Seq != 0 || legs[1].Seq != 1 {
		t.Fatal("input slice was reordered")
	}
}
