package rangeset

import "testing"

func ranges(s *Set) []Range {
	out := make([]Range, 0, s.Len())
	s.Each(func(r Range) bool {
		out = append(out, r)
		return true
	})
	return out
}

func eqRanges(t *testing.T, got, want []Range) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInsertMerge(t *testing.T) {
	tests := []struct {
		name   string
		inserts []Range
		want    []Range
	}{
		{
			name:    "disjoint stays disjoint",
			inserts: []Range{{0, 10}, {20, 30}},
			want:    []Range{{0, 10}, {20, 30}},
		},
		{
			name:    "overlapping merges",
			inserts: []Range{{0, 10}, {5, 20}},
			want:    []Range{{0, 20}},
		},
		{
			name:    "abutting merges",
			inserts: []Range{{0, 10}, {11, 20}},
			want:    []Range{{0, 20}},
		},
		{
			name:    "fills a gap, joining both neighbours",
			inserts: []Range{{0, 10}, {20, 30}, {11, 19}},
			want:    []Range{{0, 30}},
		},
		{
			name:    "out of order insertion still sorts",
			inserts: []Range{{20, 30}, {0, 10}},
			want:    []Range{{0, 10}, {20, 30}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var s Set
			for _, r := range tc.inserts {
				if err := s.Insert(r.Start, r.End); err != nil {
					t.Fatalf("Insert(%v): %v", r, err)
				}
			}
			eqRanges(t, ranges(&s), tc.want)
		})
	}
}

func TestRemoveSplits(t *testing.T) {
	var s Set
	if err := s.Insert(0, 100); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(40, 59); err != nil {
		t.Fatal(err)
	}
	eqRanges(t, ranges(&s), []Range{{0, 39}, {60, 100}})

	if err := s.Remove(0, 39); err != nil {
		t.Fatal(err)
	}
	eqRanges(t, ranges(&s), []Range{{60, 100}})

	if err := s.Remove(60, 100); err != nil {
		t.Fatal(err)
	}
	eqRanges(t, ranges(&s), nil)
}

func TestRemoveNoOverlapIsNoOp(t *testing.T) {
	var s Set
	s.Insert(10, 20)
	if err := s.Remove(100, 200); err != nil {
		t.Fatal(err)
	}
	eqRanges(t, ranges(&s), []Range{{10, 20}})
}

func TestDisjointnessInvariant(t *testing.T) {
	var s Set
	inserts := []Range{{50, 60}, {0, 10}, {5, 55}, {61, 70}, {100, 110}}
	for _, r := range inserts {
		if err := s.Insert(r.Start, r.End); err != nil {
			t.Fatal(err)
		}
	}
	rs := ranges(&s)
	for i := 1; i < len(rs); i++ {
		if rs[i-1].End >= rs[i].Start-1 {
			t.Fatalf("ranges %v and %v are not disjoint/non-abutting", rs[i-1], rs[i])
		}
	}
}

func TestContains(t *testing.T) {
	var s Set
	s.Insert(10, 20)
	s.Insert(30, 40)
	for _, tc := range []struct {
		addr uint64
		want bool
	}{
		{10, true}, {20, true}, {15, true},
		{9, false}, {21, false}, {35, true}, {41, false},
	} {
		if got := s.Contains(tc.addr); got != tc.want {
			t.Errorf("Contains(%d) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}

func TestOutOfSlots(t *testing.T) {
	var s Set
	for i := 0; i < maxRanges; i++ {
		base := uint64(i * 10)
		if err := s.Insert(base, base+1); err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
	}
	// one more, disjoint and non-abutting range should overflow the table.
	if err := s.Insert(uint64(maxRanges*10+100), uint64(maxRanges*10+101)); err != ErrOutOfSlots {
		t.Fatalf("got %v, want ErrOutOfSlots", err)
	}
}
