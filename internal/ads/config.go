package ads

import (
	"fmt"
	"os"
	"strings"
)

// Defaults for the Google Ads REST endpoint.
const (
	DefaultAPIBase    = "https://googleads.googleapis.com"
	DefaultAPIVersion = "v22"
)

// Config holds the settings every Ads REST call needs.
type Config struct {
	// APIBase is the endpoint root, overridable for testing.
	APIBase string
	// APIVersion is the Ads API version segment, e.g. "v22".
	APIVersion string
	// DeveloperToken is sent on every request via the developer-token header.
	DeveloperToken string
	// LoginCustomerID is the manager account to act on behalf of, if any.
	// Sent via the login-customer-id header.
	LoginCustomerID string
}

// ConfigFromEnv builds a Config from the environment. The developer token
// is required; everything else has defaults.
func ConfigFromEnv() (*Config, error) {
	devToken := os.Getenv("GOOGLE_ADS_DEVELOPER_TOKEN")
	if devToken == "" {
		return nil, fmt.Errorf("developer token is empty; set GOOGLE_ADS_DEVELOPER_TOKEN " +
			"(apply for one at https://developers.google.com/google-ads/api/docs/access-levels)")
	}

	cfg := &Config{
		APIBase:         os.Getenv("GOOGLE_ADS_API_BASE"),
		APIVersion:      os.Getenv("GOOGLE_ADS_API_VERSION"),
		DeveloperToken:  devToken,
		LoginCustomerID: os.Getenv("GOOGLE_ADS_LOGIN_CUSTOMER_ID"),
	}
	cfg.applyDefaults()

	if cfg.LoginCustomerID != "" {
		id, err := FormatCustomerID(cfg.LoginCustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid GOOGLE_ADS_LOGIN_CUSTOMER_ID: %w", err)
		}
		cfg.LoginCustomerID = id
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	c.APIBase = strings.TrimRight(c.APIBase, "/")
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
}

// endpoint joins the base, version and resource path into a request URL.
func (c *Config) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.APIBase, c.APIVersion, strings.TrimLeft(path, "/"))
}
