package firebase

import "testing"

func TestIdentityFromClaims(t *testing.T) {
	admins := map[string]struct{}{"owner@example.com": {}}

	tests := []struct {
		name      string
		claims    map[string]interface{}
		wantAdmin bool
	}{
		{"customer", map[string]interface{}{"email": "guest@example.com", "name": "Guest"}, false},
		{"configured admin, mixed case", map[string]interface{}{"email": "Owner@Example.com"}, true},
		{"custom claim", map[string]interface{}{"email": "staff@example.com", "admin": true}, true},
		{"no email", map[string]interface{}{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := IdentityFromClaims("uid-1", tt.claims, admins)
			if id.UID != "uid-1" {
				t.Fatalf("UID = %q, want uid-1", id.UID)
			}
			if id.IsAdmin != tt.wantAdmin {
				t.Fatalf("IsAdmin = %v, want %v", id.IsAdmin, tt.wantAdmin)
			}
		})
	}
}

func TestIdentityFromClaimsCopiesProfile(t *testing.T) {
	id := IdentityFromClaims("u", map[string]interface{}{
		"email":        "a@b.c",
		"name":         "Asha",
		"phone_number": "+919999999999",
	}, nil)
	if id.Email != "a@b.c" || id.Name != "Asha" || id.Phone != "+919999999999" {
		t.Fatalf("identity = %+v", id)
	}
}
