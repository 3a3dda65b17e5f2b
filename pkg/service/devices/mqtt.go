// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//
package devices

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/pins"
)

// mqttMirror mirrors the wires of a board onto an MQTT broker.
//
// The level of every wire is published (retained) to <prefix><wire>/state
// as ON, OFF or FLOAT. Commands published to <prefix><wire>/<driver>/command
// (ON, OFF, TOGGLE, RELEASE) are executed on the driver.
type mqttMirror struct {
	log               zerolog.Logger
	mutex             sync.Mutex
	onActive          func()
	board             *board.Board
	topicPrefix       string
	mqttClientID      string
	mqttBrokerAddress string

	client      mqttapi.Client
	unsubscribe context.CancelFunc
	// publish is replaced in tests
	publish func(topic, payload string, retain bool) error
}

const (
	mqttPublishTimeout = time.Millisecond * 200
)

// newMQTTMirror creates an MQTT mirror of the given board.
func newMQTTMirror(log zerolog.Logger, id DeviceID, b *board.Board, onActive func(), topicPrefix, mqttBrokerAddress string) *mqttMirror {
	if topicPrefix != "" {
		topicPrefix = strings.TrimSuffix(topicPrefix, "/") + "/"
	}
	d := &mqttMirror{
		log:               log,
		onActive:          onActive,
		board:             b,
		topicPrefix:       topicPrefix,
		mqttClientID:      fmt.Sprintf("%s-%s", b.Name(), id),
		mqttBrokerAddress: mqttBrokerAddress,
	}
	d.publish = d.publishToClient
	return d
}

// defaultMQTTClientOptions returns client options for the given broker.
func defaultMQTTClientOptions(brokerAddress, clientID string) *mqttapi.ClientOptions {
	if !strings.Contains(brokerAddress, "://") {
		brokerAddress = "tcp://" + brokerAddress
	}
	opts := mqttapi.NewClientOptions().
		AddBroker(brokerAddress).
		SetClientID(clientID)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(func(c mqttapi.Client, m mqttapi.Message) {
		// Ignore messages when no subscription match
	})
	return opts
}

// Configure is called once to put the device in the desired state.
func (d *mqttMirror) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// Prepare MQTT client options
	opts := defaultMQTTClientOptions(d.mqttBrokerAddress, d.mqttClientID)
	opts.SetOnConnectHandler(func(c mqttapi.Client) {
		d.log.Debug().Msg("Connected to MQTT")
		topic := d.topicPrefix + "+/+/command"
		if token := c.Subscribe(topic, 0, d.onMessage); token.Wait() && token.Error() != nil {
			d.log.Error().Err(token.Error()).
				Msgf("failed to subscribe to '%s'", topic)
			c.Disconnect(500)
			return
		}
		d.log.Debug().Msgf("Subscribed to MQTT topic '%s'", topic)
		d.onActive()
		// Publish current levels, so retained states are accurate after (re)connect
		d.publishAll()
	})

	// Connect client
	d.client = mqttapi.NewClient(opts)
	if token := d.client.Connect(); token.Wait() && token.Error() != nil {
		d.client = nil
		return errors.Wrap(token.Error(), "failed to connect to mqtt")
	}
	d.unsubscribe = d.board.Subscribe(d.onChange)
	return nil
}

// Close brings the device back to a safe state.
func (d *mqttMirror) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
	if d.client != nil {
		d.client.Disconnect(250)
		d.client = nil
	}
	d.onActive()
	return nil
}

// onChange publishes a level change of a wire.
func (d *mqttMirror) onChange(c board.Change) {
	if err := d.publishState(c.Wire, c.Level); err != nil {
		d.log.Warn().Err(err).Str("wire", c.Wire).Msg("Failed to publish state")
	}
}

// publishAll publishes the state of all wires.
func (d *mqttMirror) publishAll() {
	for _, ws := range d.board.Statuses() {
		if ws.ShortCircuit {
			continue
		}
		if err := d.publishState(ws.Name, ws.Level); err != nil {
			d.log.Warn().Err(err).Str("wire", ws.Name).Msg("Failed to publish state")
		}
	}
}

func (d *mqttMirror) publishState(wireName string, level pins.State) error {
	return d.publish(d.topicPrefix+wireName+"/state", formatState(level), true)
}

// publishToClient publishes using the MQTT client.
func (d *mqttMirror) publishToClient(topic, payload string, retain bool) error {
	d.mutex.Lock()
	client := d.client
	d.mutex.Unlock()
	if client == nil {
		return nil
	}
	token := client.Publish(topic, 0, retain, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return errors.Errorf("failed to deliver MQTT message to '%s' in time", topic)
	}
	return token.Error()
}

// Receive messages
func (d *mqttMirror) onMessage(client mqttapi.Client, msg mqttapi.Message) {
	d.onActive()
	if err := d.handleCommand(msg.Topic(), string(msg.Payload())); err != nil {
		d.log.Warn().Err(err).
			Str("topic", msg.Topic()).
			Str("payload", string(msg.Payload())).
			Msg("Failed to handle MQTT command")
	}
}

// handleCommand executes a command published to <prefix><wire>/<driver>/command.
func (d *mqttMirror) handleCommand(topic, payload string) error {
	if !strings.HasPrefix(topic, d.topicPrefix) || !strings.HasSuffix(topic, "/command") {
		return errors.Wrapf(InvalidArgumentError, "topic '%s' is not a command topic", topic)
	}
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(topic, d.topicPrefix), "/command"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.Wrapf(InvalidArgumentError, "topic '%s' is not a command topic", topic)
	}
	action, err := parseCommand(payload)
	if err != nil {
		return err
	}
	if err := d.board.Do(parts[0], parts[1], action); err != nil {
		return maskAny(err)
	}
	return nil
}

// parseCommand parses the payload of a command message.
func parseCommand(str string) (board.Action, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "toggle":
		return board.ActionToggle, nil
	case "release", "float":
		return board.ActionRelease, nil
	}
	v, err := parseBool(str)
	if err != nil {
		return "", err
	}
	if v {
		return board.ActionHigh, nil
	}
	return board.ActionLow, nil
}

// Parse a string into a bool
func parseBool(str string) (bool, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	switch str {
	case "1", "t", "true", "on", "yes", "high":
		return true, nil
	case "0", "f", "false", "off", "no", "low":
		return false, nil
	}
	return false, errors.Wrapf(InvalidArgumentError, "invalid bool value '%s'", str)
}

// format a level as string
func formatState(level pins.State) string {
	switch level {
	case pins.High:
		return "ON"
	case pins.Low:
		return "OFF"
	default:
		return "FLOAT"
	}
}
