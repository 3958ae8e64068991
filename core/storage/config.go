package storage

import "errors"

// Config holds configuration for the blob storage account.
type Config struct {
	// Account is the storage account name.
	Account string `mapstructure:"account" default:""`
	// Container is the container every operation targets.
	Container string `mapstructure:"container" default:""`
	// AccessKey is the account shared key.
	AccessKey string `mapstructure:"access_key" default:""`
	// Protocol is the endpoint protocol (https or http).
	Protocol string `mapstructure:"protocol" default:"https"`
	// EndpointSuffix is the service endpoint suffix.
	EndpointSuffix string `mapstructure:"endpoint_suffix" default:"core.windows.net"`
	// ConnectionString, when set, takes precedence over Account/AccessKey.
	ConnectionString string `mapstructure:"connection_string" default:""`
	// TimeoutSeconds bounds connection setup and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// CopyPollMillis is the interval between copy status checks.
	CopyPollMillis int `mapstructure:"copy_poll_millis" default:"500"`
}

// Validate checks that the configuration identifies an account and a container.
func (c Config) Validate() error {
	if c.Container == "" {
		return errors.New("storage container is required")
	}
	if c.ConnectionString != "" {
		return nil
	}
	if c.Account == "" || c.AccessKey == "" {
		return errors.New("storage account and access key, or a connection string, are required")
	}
	return nil
}
