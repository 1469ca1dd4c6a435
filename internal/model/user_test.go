package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleStaff, true},
		{RoleAdmin, RoleStudent, true},
		{RoleStaff, RoleAdmin, false},
		{RoleStaff, RoleStaff, true},
		{RoleStaff, RoleFaculty, true},
		{RoleFaculty, RoleStaff, false},
		{RoleFaculty, RoleStudent, true},
		{RoleStudent, RoleAdmin, false},
		{RoleStudent, RoleFaculty, false},
		{RoleStudent, RoleStudent, true},
		// Unknown roles fail-closed.
		{"unknown", RoleStudent, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleStudent, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestValidCategory(t *testing.T) {
	if !ValidCategory("Electronics") {
		t.Error("expected Electronics to be a valid category")
	}
	if ValidCategory("electronics") {
		t.Error("category check should be case-sensitive")
	}
	if ValidCategory("Vehicles") {
		t.Error("expected Vehicles to be invalid")
	}
}
