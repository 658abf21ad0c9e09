package timeslot

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "09:00", want: 540},
		{in: "00:00", want: 0},
		{in: "23:59", want: 1439},
		{in: "10:30:00", want: 630},
		{in: "24:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "0900", wantErr: true},
		{in: "", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewRejectsInvertedRange(t *testing.T) {
	if _, err := New("10:00", "09:00"); err == nil {
		t.Error("New() accepted end before start")
	}
	if _, err := New("10:00", "10:00"); err == nil {
		t.Error("New() accepted zero-length slot")
	}
}

func TestOverlaps(t *testing.T) {
	mk := func(start, end string) Slot {
		s, err := New(start, end)
		if err != nil {
			t.Fatalf("New(%s, %s): %v", start, end, err)
		}
		return s
	}
	tests := []struct {
		name string
		a, b Slot
		want bool
	}{
		{name: "disjoint", a: mk("09:00", "10:00"), b: mk("11:00", "12:00"), want: false},
		{name: "partial overlap", a: mk("09:00", "10:00"), b: mk("09:30", "10:30"), want: true},
		{name: "contained", a: mk("09:00", "12:00"), b: mk("10:00", "11:00"), want: true},
		{name: "identical", a: mk("09:00", "10:00"), b: mk("09:00", "10:00"), want: true},
		{name: "boundary touch allowed", a: mk("09:00", "10:00"), b: mk("10:00", "11:00"), want: false},
		{name: "reverse boundary touch", a: mk("10:00", "11:00"), b: mk("09:00", "10:00"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps() not symmetric: reverse = %v, want %v", got, tt.want)
			}
		})
	}
}
