package core

import "testing"

func TestParseYen(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1, true},
		{"10,933,337", 10933337, true},
		{" 8458604 ", 8458604, true},
		{"¥500", 500, true},
		{"1,000円", 1000, true},
		{"-1,000", -1000, true},
		{"0", 0, true},
		{"12.5", 0, false},
		{"abc", 0, false},
		{"１２３", 0, false}, // full-width digits
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseYen(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got)
		}
	}
}

func TestFormatYen(t *testing.T) {
	if got := FormatYen(50150000); got != "50,150,000" {
		t.Fatalf("FormatYen = %q", got)
	}
	if got := (Money{Yen: -1200}).String(); got != "-1,200円" {
		t.Fatalf("Money.String = %q", got)
	}
}
