package phone

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(11) 98765-4321", "+5511987654321"},
		{"11987654321", "+5511987654321"},
		{"+55 11 98765-4321", "+5511987654321"},
		{"005511987654321", "+5511987654321"},
		{"(21) 2345-6789", "+552123456789"},
		{"2123456789", "+552123456789"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Invalid(t *testing.T) {
	cases := []string{
		"",
		"abc",
		"123",
		"(01) 98765-4321",  // area code cannot start with 0
		"(11) 88765-4321x", // 9-digit subscriber must start with 9
		"119876543210000",
	}
	for _, in := range cases {
		if _, err := Normalize(in); err == nil {
			t.Fatalf("Normalize(%q) should fail", in)
		}
	}
}

func TestIsMobile(t *testing.T) {
	if !IsMobile("+5511987654321") {
		t.Fatalf("expected mobile")
	}
	if IsMobile("+552123456789") {
		t.Fatalf("landline reported as mobile")
	}
}

func TestValid(t *testing.T) {
	if !Valid("11 98765 4321") {
		t.Fatalf("expected valid")
	}
	if Valid("555") {
		t.Fatalf("expected invalid")
	}
}
