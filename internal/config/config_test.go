package config

import "testing"

// allEnvVars lists every config env var; cleared between tests.
var allEnvVars = []string{
	"LOUPE_DATABASE_URL", "LOUPE_HTTP_ADDR", "LOUPE_LOG_API_URL",
	"LOUPE_LOG_API_TOKEN", "LOUPE_NATS_URL", "LOUPE_AUTH_TOKEN",
	"LOUPE_EXPORT_S3_BUCKET", "LOUPE_EXPORT_S3_ENDPOINT", "LOUPE_EXPORT_S3_REGION",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantHTTPAddr string
		wantS3Region string
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{"LOUPE_LOG_API_URL": "http://logs:9000"},
			wantErr: true,
		},
		{
			name:    "MissingLogAPIURL",
			env:     map[string]string{"LOUPE_DATABASE_URL": "postgres://localhost/loupe"},
			wantErr: true,
		},
		{
			name: "Defaults",
			env: map[string]string{
				"LOUPE_DATABASE_URL": "postgres://localhost/loupe",
				"LOUPE_LOG_API_URL":  "http://logs:9000",
			},
			wantHTTPAddr: ":8080",
			wantS3Region: "us-east-1",
		},
		{
			name: "Custom",
			env: map[string]string{
				"LOUPE_DATABASE_URL":     "postgres://db:5432/loupe",
				"LOUPE_LOG_API_URL":      "http://logs:9000",
				"LOUPE_HTTP_ADDR":        ":3000",
				"LOUPE_EXPORT_S3_REGION": "eu-west-1",
			},
			wantHTTPAddr: ":3000",
			wantS3Region: "eu-west-1",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			c, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if c.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", c.HTTPAddr, tc.wantHTTPAddr)
			}
			if c.ExportS3Region != tc.wantS3Region {
				t.Errorf("ExportS3Region = %q, want %q", c.ExportS3Region, tc.wantS3Region)
			}
		})
	}
}
