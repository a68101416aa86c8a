package mask

import "testing"

func TestCPF(t *testing.T) {
	if got := CPF("529.982.247-25"); got != "529.###.###-25" {
		t.Fatalf("CPF = %q", got)
	}
	// Unformatted values pass through untouched.
	if got := CPF("52998224725"); got != "52998224725" {
		t.Fatalf("CPF(raw) = %q", got)
	}
}

func TestEmail(t *testing.T) {
	if got := Email("leonardo@example.com"); got != "le######@example.com" {
		t.Fatalf("Email = %q", got)
	}
	if got := Email("no-at-sign"); got != "no-at-sign" {
		t.Fatalf("Email(plain) = %q", got)
	}
}

func TestCel(t *testing.T) {
	if got := Cel("(83) 98877-6655"); got != "(83) 9####-6655" {
		t.Fatalf("Cel = %q", got)
	}
	if got := Cel("83988776655"); got != "83988776655" {
		t.Fatalf("Cel(raw) = %q", got)
	}
}

func TestBirthday(t *testing.T) {
	if got := Birthday("1990-12-25"); got != "####-12-25" {
		t.Fatalf("Birthday = %q", got)
	}
}

func TestName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Maria da Silva", "Maria d. S."},
		{"Maria", "M."},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Name(tc.in); got != tc.want {
			t.Fatalf("Name(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
