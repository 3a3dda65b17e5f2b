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
	"sort"
	"sync"
	"sync/atomic"
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/service/bridge"
)

const (
	// LocalGPIODeviceID is the ID of the GPIO device of the bridge.
	LocalGPIODeviceID = DeviceID("gpio")
	// MQTTMirrorDeviceID is the ID of the MQTT mirror of the board.
	MQTTMirrorDeviceID = DeviceID("mqtt")
)

// Config of the device service.
type Config struct {
	// If set, local GPIO pins are active low
	ActiveLow bool
	// Address of the MQTT broker. If empty, no MQTT mirror is created.
	MQTTBrokerAddress string
	// Prefix of all MQTT topics
	MQTTTopicPrefix string
}

// Service contains the API that is exposed by the device service.
type Service interface {
	// DeviceByID returns the device with given ID.
	// Return false if not found
	DeviceByID(id DeviceID) (Device, bool)
	// GPIOByID returns the GPIO device with given ID.
	// Return false if not found or not a GPIO.
	GPIOByID(id DeviceID) (GPIO, bool)
	// Configure is called once to put all devices in the desired state.
	Configure(ctx context.Context) error
	// Run the service until the given context is canceled.
	Run(ctx context.Context) error
	// Close brings all devices back to a safe state.
	Close(context.Context) error
	// Get a list of configured device IDs
	GetConfiguredDeviceIDs() []string
	// Get a list of unconfigured device IDs
	GetUnconfiguredDeviceIDs() []string
}

type service struct {
	log               zerolog.Logger
	bAPI              bridge.API
	devices           map[DeviceID]Device
	mutex             sync.Mutex
	configuredDevices map[DeviceID]Device
	activeCount       uint32
}

// NewService instantiates a new Service with the GPIO device of the bridge
// and (when a broker is configured) an MQTT mirror of the board.
func NewService(cfg Config, b *board.Board, bAPI bridge.API, log zerolog.Logger) (Service, error) {
	s := &service{
		log:               log.With().Str("component", "device-service").Logger(),
		bAPI:              bAPI,
		devices:           make(map[DeviceID]Device),
		configuredDevices: make(map[DeviceID]Device),
	}
	s.devices[LocalGPIODeviceID] = newLocalGPIO(bAPI, cfg.ActiveLow, s.onActive)
	if cfg.MQTTBrokerAddress != "" {
		log := s.log.With().Str("device-id", string(MQTTMirrorDeviceID)).Logger()
		s.devices[MQTTMirrorDeviceID] = newMQTTMirror(log, MQTTMirrorDeviceID, b, s.onActive,
			cfg.MQTTTopicPrefix, cfg.MQTTBrokerAddress)
	}
	devicesCreatedTotal.Set(float64(len(s.devices)))
	return s, nil
}

// DeviceByID returns the device with given ID.
// Return false if not found or not configured.
func (s *service) DeviceByID(id DeviceID) (Device, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	dev, ok := s.configuredDevices[id]
	return dev, ok
}

// GPIOByID returns the GPIO device with given ID.
// Return false if not found, not configured or not a GPIO.
func (s *service) GPIOByID(id DeviceID) (GPIO, bool) {
	dev, ok := s.DeviceByID(id)
	if !ok {
		return nil, false
	}
	gpio, ok := dev.(GPIO)
	return gpio, ok
}

// Configure is called once to put all devices in the desired state.
func (s *service) Configure(ctx context.Context) error {
	log := s.log
	var ae aerr.AggregateError
	configuredDevices := make(map[DeviceID]Device)
	for id, d := range s.devices {
		log := log.With().Str("device-id", string(id)).Logger()
		log.Debug().Msg("configuring device...")
		if err := d.Configure(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to configure device")
			ae.Add(err)
		} else {
			configuredDevices[id] = d
			log.Debug().Msg("configured device")
		}
	}
	s.mutex.Lock()
	s.configuredDevices = configuredDevices
	s.mutex.Unlock()
	log.Info().Int("count", len(configuredDevices)).Msg("Configured devices")
	devicesConfiguredTotal.Set(float64(len(configuredDevices)))
	return ae.AsError()
}

// Run the service until the given context is canceled.
func (s *service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.runActiveNotify(ctx) })
	return g.Wait()
}

// Close brings all devices back to a safe state.
func (s *service) Close(ctx context.Context) error {
	var ae aerr.AggregateError
	for _, d := range s.devices {
		if err := d.Close(ctx); err != nil {
			ae.Add(err)
		}
	}
	return ae.AsError()
}

// onActive is called when a device change is activated.
func (s *service) onActive() {
	atomic.AddUint32(&s.activeCount, 1)
}

// runActiveNotify updates the blinking status when a device has become active
func (s *service) runActiveNotify(ctx context.Context) error {
	lastActiveCount := uint32(0)
	count := 0
	for {
		select {
		case <-ctx.Done():
			// Context canceled
			return nil
		case <-time.After(time.Second / 10):
			newActiveCount := atomic.LoadUint32(&s.activeCount)
			if newActiveCount != lastActiveCount {
				lastActiveCount = newActiveCount
				s.bAPI.BlinkRedLED(time.Second / 10)
				count = 0
			} else if count < 20 {
				count++
			} else {
				count = 0
				s.bAPI.SetRedLED(false)
			}
		}
	}
}

// Get a list of configured device IDs
func (s *service) GetConfiguredDeviceIDs() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	result := lo.Map(lo.Keys(s.configuredDevices), func(id DeviceID, _ int) string {
		return string(id)
	})
	sort.Strings(result)
	return result
}

// Get a list of unconfigured device IDs
func (s *service) GetUnconfiguredDeviceIDs() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	unconfigured := lo.Filter(lo.Keys(s.devices), func(id DeviceID, _ int) bool {
		_, found := s.configuredDevices[id]
		return !found
	})
	result := lo.Map(unconfigured, func(id DeviceID, _ int) string {
		return string(id)
	})
	sort.Strings(result)
	return result
}
