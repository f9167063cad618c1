package domain

import "testing"

func TestApprovalStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("Pending must not be terminal")
	}
	if !StatusAccepted.Terminal() {
		t.Error("Accepted must be terminal")
	}
	if !StatusRejected.Terminal() {
		t.Error("Rejected must be terminal")
	}
}

func TestAccountValidate(t *testing.T) {
	base := Account{Name: "Acme", Email: "ops@acme.test", Role: RoleCompany}

	a := base
	if err := a.Validate(); err != nil {
		t.Errorf("valid account: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("defaulted status = %s, want Pending", a.Status)
	}

	a = base
	a.Email = ""
	if err := a.Validate(); err == nil {
		t.Error("expected error for missing email")
	}
	a = base
	a.Name = ""
	if err := a.Validate(); err == nil {
		t.Error("expected error for missing name")
	}
	a = base
	a.Role = "Superuser"
	if err := a.Validate(); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestPrincipalIsAdministrator(t *testing.T) {
	cases := []struct {
		name string
		p    Principal
		want bool
	}{
		{"active administrator", Principal{Role: RoleAdministrator, Active: true}, true},
		{"inactive administrator", Principal{Role: RoleAdministrator, Active: false}, false},
		{"active company", Principal{Role: RoleCompany, Active: true}, false},
		{"zero principal", Principal{}, false},
	}
	for _, tc := range cases {
		if got := tc.p.IsAdministrator(); got != tc.want {
			t.Errorf("%s: IsAdministrator = %v, want %v", tc.name, got, tc.want)
		}
	}
}
