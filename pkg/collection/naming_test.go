package collection

import "testing"

func TestParseNaming(t *testing.T) {
	tests := []struct {
		in      string
		want    Naming
		wantErr bool
	}{
		{"", ByGroupName, false},
		{"byGroupName", ByGroupName, false},
		{"bySlotIndex", BySlotIndex, false},
		{"bygroupname", "", true},
		{"slot", "", true},
	}
	for _, tt := range tests {
		got, err := ParseNaming(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNaming(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNaming(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVariantName(t *testing.T) {
	if got := ByGroupName.VariantName(2, "logo1"); got != "logo1" {
		t.Errorf("ByGroupName = %q, want logo1", got)
	}
	if got := BySlotIndex.VariantName(2, "logo1"); got != "variant-2" {
		t.Errorf("BySlotIndex = %q, want variant-2", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"label", "label"},
		{"logo1", "logo1"},
		{"I Heart", "i-heart"},
		{"I Was Here!", "i-was-here"},
		{"Café Logo", "cafe-logo"},
		{"  spaced  out ", "spaced-out"},
		{"snake_case", "snake_case"},
		{"★★★", "group"},
		{"", "group"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
