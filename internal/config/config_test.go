package config

import "testing"

func TestValidate_ProductionRequiresSecretKey(t *testing.T) {
	c := Config{
		DatabaseURL:                "postgres://localhost/db",
		CORSOrigins:                []string{"https://example.com"},
		SessionTTLSeconds:          86400,
		SessionRefreshGraceSeconds: 60,
	}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when SECRET_KEY is missing in production mode")
	}
}

func TestValidate_RejectsDevSentinelInProduction(t *testing.T) {
	c := Config{
		DatabaseURL:                "postgres://localhost/db",
		CORSOrigins:                []string{"https://example.com"},
		SecretKey:                  devSecretSentinel,
		SessionTTLSeconds:          86400,
		SessionRefreshGraceSeconds: 60,
	}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when SECRET_KEY is the dev sentinel")
	}
}

func TestValidate_RejectsWildcardCORSInProduction(t *testing.T) {
	c := Config{
		DatabaseURL:                "postgres://localhost/db",
		CORSOrigins:                []string{"*"},
		SecretKey:                  "0123456789abcdef0123456789abcdef",
		SessionTTLSeconds:          86400,
		SessionRefreshGraceSeconds: 60,
	}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when CORS_ORIGINS is '*' in production")
	}
}

func TestValidate_TestModeAllowsDefaults(t *testing.T) {
	c := Config{
		IntegrationTestMode:        true,
		DatabaseURL:                "postgres://localhost/db",
		SecretKey:                  devSecretSentinel,
		SessionTTLSeconds:          86400,
		SessionRefreshGraceSeconds: 60,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("test mode should tolerate the dev sentinel and missing CORS: %v", err)
	}
}

func TestValidate_RequiresDatabaseURLInAnyMode(t *testing.T) {
	c := Config{IntegrationTestMode: true}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing even in test mode")
	}
}

func TestValidate_GraceWindowBounds(t *testing.T) {
	c := Config{
		IntegrationTestMode:        true,
		DatabaseURL:                "postgres://localhost/db",
		SessionTTLSeconds:          100,
		SessionRefreshGraceSeconds: 59,
	}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when grace window is below 60s")
	}

	c.SessionRefreshGraceSeconds = 200
	c.SessionTTLSeconds = 100
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when grace window exceeds session TTL")
	}
}

func TestLoadRateLimits_ProductionDefaults(t *testing.T) {
	limits := loadRateLimits(false)
	want := map[string]RateLimitPolicy{
		"chat":        {MaxRequests: 10, WindowSeconds: 60},
		"save":        {MaxRequests: 5, WindowSeconds: 60},
		"personalize": {MaxRequests: 3, WindowSeconds: 60},
	}
	for action, p := range want {
		if limits[action] != p {
			t.Errorf("action %s: got %+v, want %+v", action, limits[action], p)
		}
	}
}

func TestLoadRateLimits_TestDefaultsHalveMaxAndShrinkWindow(t *testing.T) {
	limits := loadRateLimits(true)
	want := map[string]RateLimitPolicy{
		"chat":        {MaxRequests: 5, WindowSeconds: 10},
		"save":        {MaxRequests: 2, WindowSeconds: 10},
		"personalize": {MaxRequests: 1, WindowSeconds: 10},
	}
	for action, p := range want {
		if limits[action] != p {
			t.Errorf("action %s: got %+v, want %+v", action, limits[action], p)
		}
	}
}

func TestIsSQLiteURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"sqlite:///tmp/db.sqlite", true},
		{"./local.db", true},
		{"postgres://localhost/db", false},
	}
	for _, tc := range cases {
		c := Config{DatabaseURL: tc.url}
		if got := c.IsSQLiteURL(); got != tc.want {
			t.Errorf("IsSQLiteURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
