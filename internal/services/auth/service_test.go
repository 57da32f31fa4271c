package auth

import (
	"strings"
	"testing"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

func testConfig(tokens ...models.APIToken) *models.AuthConfig {
	return &models.AuthConfig{
		Enabled: true,
		API:     models.APIAuthConfig{Tokens: tokens},
	}
}

func TestValidateAPIToken(t *testing.T) {
	svc := NewService(testConfig(
		models.APIToken{Token: "vd_agent", Name: "Agent", Permissions: []string{"report"}},
	))

	tok, err := svc.ValidateAPIToken("vd_agent")
	if err != nil {
		t.Fatalf("ValidateAPIToken: %v", err)
	}
	if tok.Name != "Agent" {
		t.Fatalf("expected Agent token, got %s", tok.Name)
	}
	if !tok.HasPermission(models.PermissionReport) {
		t.Fatalf("expected report permission")
	}
	if tok.HasPermission(models.PermissionAdmin) {
		t.Fatalf("unexpected admin permission")
	}

	if _, err := svc.ValidateAPIToken("vd_wrong"); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestValidateAPITokenExpired(t *testing.T) {
	past := "2020-01-01"
	svc := NewService(testConfig(
		models.APIToken{Token: "vd_old", Name: "Old", Permissions: []string{"read"}, Expires: &past},
	))

	if _, err := svc.ValidateAPIToken("vd_old"); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestValidateAPITokenDisabledAuth(t *testing.T) {
	svc := NewService(&models.AuthConfig{Enabled: false})

	tok, err := svc.ValidateAPIToken("anything")
	if err != nil {
		t.Fatalf("ValidateAPIToken with auth disabled: %v", err)
	}
	for _, p := range []models.TokenPermission{models.PermissionMetrics, models.PermissionRead, models.PermissionReport, models.PermissionAdmin} {
		if !tok.HasPermission(p) {
			t.Fatalf("expected %s permission with auth disabled", p)
		}
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken("vd")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	b, err := GenerateToken("vd")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if !strings.HasPrefix(a, "vd_") {
		t.Fatalf("expected vd_ prefix, got %q", a)
	}
	if len(a) != len("vd_")+48 {
		t.Fatalf("expected 48 hex chars after prefix, got %d total", len(a))
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
}

func TestAdminGrantsEverything(t *testing.T) {
	tok := models.APIToken{Token: "vd_admin", Permissions: []string{"admin"}}
	for _, p := range []models.TokenPermission{models.PermissionMetrics, models.PermissionRead, models.PermissionReport} {
		if !tok.HasPermission(p) {
			t.Fatalf("expected admin to imply %s", p)
		}
	}
}
