package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"150000", 150_000, false},
		{"150.000", 150_000, false},
		{"150,000", 150_000, false},
		{"1.234.567", 1_234_567, false},
		{" 500 ", 500, false},
		{"150000.50", 150_001, false},
		{"150000.49", 150_000, false},
		{"150000,5", 150_001, false},
		{"0", 0, true},
		{"", 0, true},
		{"-100", 0, true},
		{"+100", 0, true},
		{"abc", 0, true},
		{"12x3", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{1500, "Rp 1.500"},
		{150_000, "Rp 150.000"},
		{1_234_567, "Rp 1.234.567"},
		{-25_000, "-Rp 25.000"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(tc.in); got != tc.want {
			t.Errorf("FormatRupiah(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
