package tabular

import "testing"

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{in: "52,5200", want: 52.52, ok: true},
		{in: "13,405", want: 13.405, ok: true},
		{in: "1.234,56", want: 1234.56, ok: true},
		{in: "13.405", want: 13.405, ok: true},
		{in: " 22 ", want: 22, ok: true},
		{in: "", ok: false},
		{in: "n/a", ok: false},
		{in: "nan", ok: false},
		{in: "inf", ok: false},
		{in: "1,2,3", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseDecimal(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseDecimal(%q) ok=%v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseDecimal(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExtractPostalCode(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "10115", want: 10115, ok: true},
		{in: "10115.0", want: 10115, ok: true},
		{in: "PLZ 12043 Neukölln", want: 12043, ok: true},
		{in: "01067", want: 1067, ok: true},
		{in: "1011", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := ExtractPostalCode(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ExtractPostalCode(%q)=(%d,%v), want (%d,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "3878100", want: 3878100, ok: true},
		{in: "3878100.0", want: 3878100, ok: true},
		{in: "3.878.100", want: 3878100, ok: true},
		{in: "3 878 100", want: 3878100, ok: true},
		{in: "12 345*", want: 12345, ok: true},
		{in: "17.000", want: 17000, ok: true},
		{in: "5.000", want: 5000, ok: true},
		{in: "1.000.000", want: 1000000, ok: true},
		{in: "28,0", want: 28, ok: true},
		{in: "28.0", want: 28, ok: true},
		{in: "1.000,0", want: 1000, ok: true},
		{in: "–", ok: false},
		{in: "-", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseCount(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseCount(%q)=(%d,%v), want (%d,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
