package mirror

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/temoto/moose/log2"
)

type pahoPublisher struct {
	m       mqtt.Client
	qos     byte
	retain  bool
	timeout time.Duration
}

func dialPaho(log *log2.Log, config Config, robotPath string) (*pahoPublisher, error) {
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	if log.Enabled(log2.LDebug) {
		mqtt.DEBUG = log
	}

	clientID := config.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("moose-%s-%d", robotPath, time.Now().Unix()%100000)
	}
	timeout := config.ConnectTimeout()
	mopt := mqtt.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(clientID).
		SetUsername(config.Username).
		SetPassword(config.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout).
		SetOnConnectHandler(func(mqtt.Client) { log.Infof("mirror mqtt connected broker=%s", config.Broker) }).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) { log.Errorf("mirror mqtt connection lost err=%v", err) })
	m := mqtt.NewClient(mopt)
	token := m.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, errors.Timeoutf("mqtt connect broker=%s", config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Annotatef(err, "mqtt connect broker=%s", config.Broker)
	}
	return &pahoPublisher{
		m:       m,
		qos:     byte(config.Qos),
		retain:  config.Retain,
		timeout: timeout,
	}, nil
}

func (p *pahoPublisher) Publish(topic string, payload []byte) error {
	token := p.m.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return errors.Timeoutf("mqtt publish topic=%s", topic)
	}
	return token.Error()
}

func (p *pahoPublisher) Close() { p.m.Disconnect(250) }
