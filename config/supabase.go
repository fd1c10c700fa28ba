package config

import (
	"fmt"
	"os"

	supa "github.com/supabase-community/supabase-go"
)

var SupabaseClient *supa.Client

// InitSupabase initializes the Supabase client from SUPABASE_URL and
// SUPABASE_SERVICE_KEY. Both are required; there is no anonymous fallback
// because the pipeline writes project rows and storage objects.
func InitSupabase() error {
	supabaseURL := os.Getenv(EnvSupabaseURL)
	supabaseKey := os.Getenv(EnvSupabaseKey)
	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("%s and %s must be set", EnvSupabaseURL, EnvSupabaseKey)
	}

	client, err := supa.NewClient(supabaseURL, supabaseKey, nil)
	if err != nil {
		return fmt.Errorf("initialize supabase client: %w", err)
	}

	SupabaseClient = client
	return nil
}

// GetSupabaseURL returns the Supabase project URL.
func GetSupabaseURL() string {
	return os.Getenv(EnvSupabaseURL)
}

// GetSupabaseKey returns the service key used for storage and REST calls.
func GetSupabaseKey() string {
	return os.Getenv(EnvSupabaseKey)
}
