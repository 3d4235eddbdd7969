// Separate package is workaround to import cycles.
package superstar_config

import (
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/moose/helpers"
)

const (
	DefaultURL            = "https://robotmoose.com/superstar"
	DefaultNetworkTimeout = 30 * time.Second
)

type Config struct { //nolint:maligned
	Path   string `hcl:"path"`
	Secret string `hcl:"secret"` // secret
	URL    string `hcl:"url"`
	// 0 = fetch on every read; negative is same as 0
	RefreshMs         int  `hcl:"refresh_ms"`
	NetworkTimeoutSec int  `hcl:"network_timeout_sec"`
	SharedGate        bool `hcl:"shared_gate"`
	LogDebug          bool `hcl:"log_debug"`
}

func (c *Config) Validate() error {
	c.Path = strings.Trim(c.Path, "/")
	if c.Path == "" {
		return errors.NotValidf("superstar path empty")
	}
	if c.Secret == "" {
		return errors.NotValidf("superstar secret empty")
	}
	if c.NetworkTimeoutSec < 0 {
		return errors.NotValidf("network_timeout_sec=%d", c.NetworkTimeoutSec)
	}
	return nil
}

func (c *Config) BaseURL() string {
	u := c.URL
	if u == "" {
		u = DefaultURL
	}
	return strings.TrimRight(u, "/")
}

func (c *Config) RefreshInterval() time.Duration {
	return helpers.IntMillisecondDefault(c.RefreshMs, 0)
}

func (c *Config) NetworkTimeout() time.Duration {
	return helpers.IntSecondDefault(c.NetworkTimeoutSec, DefaultNetworkTimeout)
}
