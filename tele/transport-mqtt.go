package tele

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/fsae-telemetry/telenode/state"
	"github.com/juju/errors"
)

const (
	payloadOffline byte = 0x00
	payloadOnline  byte = 0x01
)

type transportMqtt struct {
	log  *log2.Log
	m    mqtt.Client
	mopt *mqtt.ClientOptions

	topicPrefix    string
	topicConnect   string
	topicTelemetry string
}

func TopicConnect(nodeID string) string   { return fmt.Sprintf("%s/c", nodeID) }
func TopicTelemetry(nodeID string) string { return fmt.Sprintf("%s/w/1t", nodeID) }

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, nodeID string, c state.TeleConfig) error {
	if c.MqttBroker == "" {
		return errors.NotValidf("tele mqtt_broker empty")
	}
	self.log = log
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log
	if c.LogDebug {
		mqtt.DEBUG = log
	}

	credFun := func() (string, string) {
		user := c.MqttUser
		if user == "" {
			user = nodeID
		}
		return user, c.MqttPassword
	}
	self.topicPrefix = nodeID
	self.topicConnect = TopicConnect(nodeID)
	self.topicTelemetry = TopicTelemetry(nodeID)
	keepAlive := helpers.IntSecondDefault(c.KeepaliveSec, 60*time.Second)
	pingTimeout := helpers.IntSecondDefault(c.PingTimeoutSec, 30*time.Second)
	retryInterval := helpers.IntSecondDefault(c.KeepaliveSec/2, 30*time.Second)

	self.mopt = mqtt.NewClientOptions().
		AddBroker(c.MqttBroker).
		SetBinaryWill(self.topicConnect, []byte{payloadOffline}, 1, true).
		SetCleanSession(true).
		SetClientID(nodeID).
		SetCredentialsProvider(credFun).
		SetKeepAlive(keepAlive).
		SetPingTimeout(pingTimeout).
		SetOrderMatters(false).
		SetAutoReconnect(true).
		SetConnectRetryInterval(retryInterval).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler).
		SetConnectRetry(true)
	self.m = mqtt.NewClient(self.mopt)
	// with ConnectRetry token completes only after first successful connect
	if token := self.m.Connect(); token.Error() != nil {
		return errors.Annotatef(token.Error(), "mqtt connect broker=%s", c.MqttBroker)
	}
	return nil
}

func (self *transportMqtt) SendTelemetry(payload []byte) bool {
	if !self.m.IsConnectionOpen() {
		return false
	}
	self.m.Publish(self.topicTelemetry, 1, false, payload)
	return true
}

func (self *transportMqtt) CloseTele() {
	if self.m == nil {
		return
	}
	if self.m.IsConnectionOpen() {
		token := self.m.Publish(self.topicConnect, 1, true, []byte{payloadOffline})
		if !token.WaitTimeout(time.Second) {
			self.log.Debugf("mqtt offline publish timeout")
		}
	}
	self.m.Disconnect(250)
	self.log.Infof("mqtt disconnected")
}

func (self *transportMqtt) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("mqtt disconnect err=%v", err)
}

func (self *transportMqtt) onConnectHandler(c mqtt.Client) {
	self.log.Infof("mqtt connect")
	c.Publish(self.topicConnect, 1, true, []byte{payloadOnline})
}
