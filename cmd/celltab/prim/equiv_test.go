package prim

import "testing"

func TestEquivalent(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"A", "A", true},
		{"A", "B", false},
		{"!(A&B)", "!A|!B", true},
		{"!(A|B)", "!A&!B", true},
		{"(A&!B)|(!A&B)", "(A|B)&!(A&B)", true},
		{"(A&!S)|(B&S)", "(A|S)&(B|!S)", true},
		{"(A&B)|(A&C)|(B&C)", "(A&(B|C))|(B&C)", true},
		{"A&B", "A|B", false},
		{"!!A", "A", true},
		{"A|!A", "B|!B", true},
		{"A&!A", "B", false},
	}
	for _, tc := range cases {
		t.Run(tc.a+" vs "+tc.b, func(t *testing.T) {
			got := Equivalent(mustParse(t, tc.a), mustParse(t, tc.b))
			if got != tc.want {
				t.Fatalf("Equivalent(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestConstant(t *testing.T) {
	cases := []struct {
		in        string
		value, ok bool
	}{
		{"A|!A", true, true},
		{"A&!A", false, true},
		{"(A|B)|!(A|B)", true, true},
		{"A", false, false},
		{"A&B", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			value, ok := Constant(mustParse(t, tc.in))
			if ok != tc.ok || (ok && value != tc.value) {
				t.Fatalf("Constant(%q) = (%v, %v), want (%v, %v)", tc.in, value, ok, tc.value, tc.ok)
			}
		})
	}
}
