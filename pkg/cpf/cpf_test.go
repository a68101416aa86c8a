package cpf

import "testing"

func TestNormalize(t *testing.T) {
	if got := Normalize("529.982.247-25"); got != "52998224725" {
		t.Fatalf("Normalize = %q", got)
	}
	if got := Normalize("abc"); got != "" {
		t.Fatalf("Normalize(abc) = %q", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format("52998224725"); got != "529.982.247-25" {
		t.Fatalf("Format = %q", got)
	}
	if got := Format("529.982.247-25"); got != "529.982.247-25" {
		t.Fatalf("Format(formatted) = %q", got)
	}
	// Inputs that are not 11 digits pass through untouched.
	if got := Format("1234"); got != "1234" {
		t.Fatalf("Format(short) = %q", got)
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{
		"52998224725",
		"529.982.247-25",
		"39053344705",
	}
	for _, v := range valid {
		if !IsValid(v) {
			t.Fatalf("expected %q to be valid", v)
		}
	}

	invalid := []string{
		"",
		"123",
		"52998224726",
		"12345678900",
		"00000000000",
		"11111111111",
		"529.982.247-2X",
	}
	for _, v := range invalid {
		if IsValid(v) {
			t.Fatalf("expected %q to be invalid", v)
		}
	}
}
