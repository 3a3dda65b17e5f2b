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
package logging

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
)

type mqttLogger struct {
	queue   chan []byte
	topic   string
	publish func(topic string, payload []byte) error
}

const (
	mqttQueueSize      = 512
	mqttPublishTimeout = time.Millisecond * 200
)

// NewMQTTWriter creates a new MQTT output for logs, publishing every log
// line to the given topic.
// The MQTT client is disconnected when the given context is canceled.
func NewMQTTWriter(ctx context.Context, brokerAddress, clientID, topic string) (io.Writer, error) {
	if !strings.Contains(brokerAddress, "://") {
		brokerAddress = "tcp://" + brokerAddress
	}
	opts := mqttapi.NewClientOptions().
		AddBroker(brokerAddress).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)
	client := mqttapi.NewClient(opts)
	// With connect retry, the token completes once connected
	client.Connect()
	l := newMQTTLogger(topic, func(topic string, payload []byte) error {
		if !client.IsConnectionOpen() {
			// Drop logs while not connected
			return nil
		}
		token := client.Publish(topic, 0, false, payload)
		token.WaitTimeout(mqttPublishTimeout)
		return token.Error()
	})
	go func() {
		l.run(ctx)
		client.Disconnect(250)
	}()
	return l, nil
}

func newMQTTLogger(topic string, publish func(topic string, payload []byte) error) *mqttLogger {
	return &mqttLogger{
		queue:   make(chan []byte, mqttQueueSize),
		topic:   topic,
		publish: publish,
	}
}

func (l *mqttLogger) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	// p may be reused by the caller
	msg := append([]byte(nil), p...)
	for attempt := 0; attempt < 10; attempt++ {
		select {
		case l.queue <- msg:
			return len(p), nil
		default:
			// Queue full; Take 1 out and try again
			select {
			case <-l.queue:
				// Continue
			default:
				// Also continue
			}
		}
	}
	// Ignore errors
	return len(p), nil
}

type logMsg struct {
	Message string `json:"message"`
}

func (l *mqttLogger) run(ctx context.Context) {
	for {
		select {
		case msg := <-l.queue:
			payload, err := json.Marshal(logMsg{Message: strings.TrimSpace(string(msg))})
			if err == nil {
				// Errors cannot be logged here
				l.publish(l.topic, payload)
			}
		case <-ctx.Done():
			return
		}
	}
}
