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
package service

import (
	"context"
	"os"
	"sync"
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/pins"
	"github.com/binkynet/PinSim/pkg/service/bridge"
	"github.com/binkynet/PinSim/pkg/service/devices"
	"github.com/binkynet/PinSim/pkg/service/util"
	"github.com/binkynet/PinSim/pkg/vcd"
	"github.com/binkynet/PinSim/pkg/wire"
)

// Service runs a simulated board with its bridge and devices.
type Service interface {
	// Run the service until the given context is cancelled.
	Run(ctx context.Context) error
	// Board returns the simulated board.
	Board() *board.Board
	// Bridge returns the bridge on top of the board.
	Bridge() bridge.API
	// Devices returns the device service.
	Devices() devices.Service
	// Close stops recording and brings all devices back to a safe state.
	Close() error
}

type Config struct {
	ProgramVersion string
	// Path of the board configuration. If empty, an empty board is used.
	BoardConfigPath string
	// Path of the value change dump to record. If empty, nothing is recorded.
	VCDPath string
	// Number of local GPIO pins of the bridge
	PinCount int
	// If set, local GPIO pins are active low
	ActiveLow         bool
	MQTTBrokerAddress string
	MQTTTopicPrefix   string
}

type Dependencies struct {
	Logger zerolog.Logger
}

type service struct {
	Config
	Dependencies

	mutex    sync.Mutex
	closed   bool
	board    *board.Board
	bridge   bridge.API
	devices  devices.Service
	vcdFile  *os.File
	recorder *vcd.Recorder
}

const (
	defaultBoardName = "pinsim"
)

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	log := deps.Logger

	cfg := board.Config{Name: defaultBoardName}
	if conf.BoardConfigPath != "" {
		var err error
		cfg, err = board.LoadConfig(conf.BoardConfigPath)
		if err != nil {
			return nil, err
		}
		if cfg.Name == "" {
			cfg.Name = defaultBoardName
		}
	}
	s := &service{
		Config:       conf,
		Dependencies: deps,
	}

	var opts []board.Option
	if conf.VCDPath != "" {
		observer, err := s.createRecorder(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, board.WithObserver(observer))
	}
	b, err := board.New(cfg, log, opts...)
	if err != nil {
		s.closeRecorder()
		return nil, err
	}
	s.board = b
	s.bridge, err = bridge.NewVirtualBridge(b, conf.PinCount, log)
	if err != nil {
		s.closeRecorder()
		return nil, errors.Wrap(err, "Failed to create bridge")
	}
	s.devices, err = devices.NewService(devices.Config{
		ActiveLow:         conf.ActiveLow,
		MQTTBrokerAddress: conf.MQTTBrokerAddress,
		MQTTTopicPrefix:   conf.MQTTTopicPrefix,
	}, b, s.bridge, log)
	if err != nil {
		s.closeRecorder()
		return nil, errors.Wrap(err, "Failed to create device service")
	}
	log.Info().
		Str("board", b.Name()).
		Int("wires", len(b.WireNames())).
		Int("pins", conf.PinCount).
		Msg("Created board")
	return s, nil
}

// createRecorder creates the VCD file and returns an observer that
// records all wires of the board and the bridge.
func (s *service) createRecorder(cfg board.Config) (wire.Observer, error) {
	var signals []vcd.Signal
	known := make(map[string]struct{})
	add := func(name string, pull pins.State) {
		if _, found := known[name]; !found {
			known[name] = struct{}{}
			signals = append(signals, vcd.Signal{Name: name, Initial: vcd.FromState(pull)})
		}
	}
	for _, wc := range cfg.Wires {
		add(wc.Name, wc.Pull)
	}
	for pin := 1; pin <= s.PinCount; pin++ {
		add(bridge.PinWireName(pin), pins.High)
	}
	add(bridge.GreenLEDWire, pins.Floating)
	add(bridge.RedLEDWire, pins.Floating)

	f, err := os.Create(s.VCDPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create VCD file %s", s.VCDPath)
	}
	recorder, err := vcd.NewRecorder(f, vcd.Header{
		Version: "pinsim " + s.ProgramVersion,
		Scope:   cfg.Name,
		Signals: signals,
	})
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "Failed to write VCD header")
	}
	s.vcdFile = f
	s.recorder = recorder
	record := recorder.Observer()
	return func(name string, level pins.State) {
		// Wires added at runtime are not part of the dump
		if _, found := known[name]; found {
			record(name, level)
		}
	}, nil
}

// Board returns the simulated board.
func (s *service) Board() *board.Board {
	return s.board
}

// Bridge returns the bridge on top of the board.
func (s *service) Bridge() bridge.API {
	return s.bridge
}

// Devices returns the device service.
func (s *service) Devices() devices.Service {
	return s.devices
}

// Run the board and devices until the given context is cancelled.
func (s *service) Run(ctx context.Context) error {
	log := s.Logger
	defer s.Close()

	s.bridge.BlinkGreenLED(time.Millisecond * 250)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.board.Run(ctx) })
	g.Go(func() error {
		once := func() error {
			if err := s.devices.Configure(ctx); err != nil {
				deviceConfigureFailuresTotal.Inc()
				return err
			}
			s.bridge.SetGreenLED(true)
			return s.devices.Run(ctx)
		}
		return util.UntilCanceled(ctx, log, "devices", once)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("Service stopped")
	return nil
}

// Close stops recording and brings all devices back to a safe state.
func (s *service) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var ae aerr.AggregateError
	if err := s.devices.Close(context.Background()); err != nil {
		ae.Add(errors.Wrap(err, "Failed to close devices"))
	}
	if err := s.bridge.Close(); err != nil {
		ae.Add(errors.Wrap(err, "Failed to close bridge"))
	}
	if err := s.closeRecorder(); err != nil {
		ae.Add(err)
	}
	return ae.AsError()
}

// closeRecorder flushes the dump and closes its file.
func (s *service) closeRecorder() error {
	if s.recorder == nil {
		return nil
	}
	var ae aerr.AggregateError
	if err := s.recorder.Close(); err != nil {
		ae.Add(errors.Wrap(err, "Failed to record VCD"))
	}
	if err := s.vcdFile.Close(); err != nil {
		ae.Add(errors.Wrap(err, "Failed to close VCD file"))
	}
	s.recorder = nil
	s.vcdFile = nil
	return ae.AsError()
}
