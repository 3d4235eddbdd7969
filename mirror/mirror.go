// Package mirror republishes robot sensor snapshots to MQTT broker,
// so local dashboards can watch a robot without polling superstar.
package mirror

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/moose/helpers"
	"github.com/temoto/moose/log2"
	"github.com/temoto/moose/superstar"
)

const defaultConnectTimeout = 10 * time.Second

type Config struct { //nolint:maligned
	Enabled           bool   `hcl:"enable"`
	Broker            string `hcl:"broker"`
	ClientID          string `hcl:"client_id"`
	Username          string `hcl:"username"`
	Password          string `hcl:"password"` // secret
	TopicPrefix       string `hcl:"topic_prefix"`
	Qos               int    `hcl:"qos"`
	Retain            bool   `hcl:"retain"`
	ConnectTimeoutSec int    `hcl:"connect_timeout_sec"`
	LogDebug          bool   `hcl:"log_debug"`
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return errors.NotValidf("mirror broker empty")
	}
	if c.Qos < 0 || c.Qos > 2 {
		return errors.NotValidf("mirror qos=%d", c.Qos)
	}
	return nil
}

func (c *Config) ConnectTimeout() time.Duration {
	return helpers.IntSecondDefault(c.ConnectTimeoutSec, defaultConnectTimeout)
}

type Publisher interface {
	Publish(topic string, payload []byte) error
	Close()
}

// Mirror publishes snapshot only when it differs from previous one.
// nil *Mirror is valid and does nothing.
type Mirror struct {
	log   *log2.Log
	pub   Publisher
	topic string

	mu   sync.Mutex
	last []byte
}

// New connects to broker. Returns nil Mirror when disabled in config.
func New(log *log2.Log, config Config, robotPath string) (*Mirror, error) {
	if !config.Enabled {
		return nil, nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.LogDebug {
		log.SetLevel(log2.LDebug)
	}
	pub, err := dialPaho(log, config, robotPath)
	if err != nil {
		return nil, errors.Annotate(err, "mirror")
	}
	return NewWithPublisher(log, pub, Topic(config.TopicPrefix, robotPath)), nil
}

func NewWithPublisher(log *log2.Log, pub Publisher, topic string) *Mirror {
	return &Mirror{log: log, pub: pub, topic: topic}
}

// Topic is {prefix}/{path}/sensors, prefix is optional.
func Topic(prefix, robotPath string) string {
	t := strings.Trim(robotPath, "/") + "/" + string(superstar.ResourceSensors)
	if p := strings.Trim(prefix, "/"); p != "" {
		t = p + "/" + t
	}
	return t
}

func (m *Mirror) Topic() string {
	if m == nil {
		return ""
	}
	return m.topic
}

// Sensors publishes compact JSON of snapshot. Returns true if published.
// Empty snapshots are skipped.
func (m *Mirror) Sensors(v superstar.Value) (bool, error) {
	if m == nil || superstar.Empty(v) {
		return false, nil
	}
	payload, err := superstar.Compact(v)
	if err != nil {
		return false, errors.Annotate(err, "mirror encode")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if bytes.Equal(payload, m.last) {
		return false, nil
	}
	if err := m.pub.Publish(m.topic, payload); err != nil {
		return false, errors.Annotatef(err, "mirror publish topic=%s", m.topic)
	}
	m.log.Debugf("mirror published topic=%s size=%d", m.topic, len(payload))
	m.last = payload
	return true, nil
}

func (m *Mirror) Close() {
	if m == nil {
		return
	}
	m.pub.Close()
}
