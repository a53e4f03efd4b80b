package board

import "testing"

func TestParseWeapon(t *testing.T) {
	tests := []struct {
		in   string
		want Weapon
	}{
		{"Vandal", WeaponVandal},
		{"Phantom", WeaponPhantom},
		{"Operator", WeaponOperator},
		{"Any", WeaponAny},
		{"", WeaponAny},
		{"vandal", WeaponAny}, // case sensitive
		{"Knife", WeaponAny},
	}
	for _, tt := range tests {
		if got := ParseWeapon(tt.in); got != tt.want {
			t.Errorf("ParseWeapon(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"Push", ActionPush},
		{"Hold", ActionHold},
		{"Fake", ActionFake},
		{"Lurk", ActionLurk},
		{"Utility", ActionUtility},
		{"", ActionUtility},
		{"Rush", ActionUtility},
	}
	for _, tt := range tests {
		if got := ParseAction(tt.in); got != tt.want {
			t.Errorf("ParseAction(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClampDuration(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{5, 5},
		{9, 5},
	}
	for _, tt := range tests {
		if got := ClampDuration(tt.in); got != tt.want {
			t.Errorf("ClampDuration(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseReactionKey(t *testing.T) {
	for _, valid := range []string{"love", "fire", "brain", "rip"} {
		if _, err := ParseReactionKey(valid); err != nil {
			t.Errorf("ParseReactionKey(%q) error = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "LOVE", "heart", "100"} {
		if _, err := ParseReactionKey(invalid); err == nil {
			t.Errorf("ParseReactionKey(%q) error = nil, want validation error", invalid)
		}
	}
}

func TestParsePostType(t *testing.T) {
	for _, valid := range []string{"messages", "strategies"} {
		if _, err := ParsePostType(valid); err != nil {
			t.Errorf("ParsePostType(%q) error = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "message", "posts"} {
		if _, err := ParsePostType(invalid); err == nil {
			t.Errorf("ParsePostType(%q) error = nil, want validation error", invalid)
		}
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 80},
		{-5, 80},
		{1, 1},
		{80, 80},
		{200, 200},
		{500, 200},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
