//    Copyright 2026 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/PinSim/pkg/logging"
	"github.com/binkynet/PinSim/pkg/server"
	"github.com/binkynet/PinSim/pkg/service"
	"github.com/binkynet/PinSim/pkg/ui"
)

const (
	projectName        = "PinSim"
	defaultServerPort  = 7129
	defaultSSHPort     = 7122
	defaultPinCount    = 17
	defaultMQTTPrefix  = "/pinsim/"
	defaultSSHHostKey  = ".ssh/id_ed25519"
	logFilePermissions = 0644
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
)

func main() {
	var levelFlag string
	var logFile string
	var boardConfig string
	var vcdPath string
	var serverHost string
	var serverPort int
	var sshPort int
	var sshHostKey string
	var mqttBroker string
	var mqttPrefix string
	var pinCount int
	var activeLow bool

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVar(&logFile, "log-file", "", "Also write logs to this file")
	pflag.StringVarP(&boardConfig, "config", "c", "", "Path of the board configuration (JSON)")
	pflag.StringVar(&vcdPath, "vcd", "", "Record all wire level changes into this VCD file")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the HTTP & SSH server will listen on")
	pflag.IntVar(&serverPort, "port", defaultServerPort, "Port the HTTP server will listen on")
	pflag.IntVar(&sshPort, "ssh-port", defaultSSHPort, "Port the SSH server will listen on (0 to disable)")
	pflag.StringVar(&sshHostKey, "ssh-host-key", defaultSSHHostKey, "Path of the SSH host key")
	pflag.StringVar(&mqttBroker, "mqtt-broker", "", "Address of the MQTT broker to mirror wires to (host:port)")
	pflag.StringVar(&mqttPrefix, "mqtt-prefix", defaultMQTTPrefix, "Prefix of all MQTT topics")
	pflag.IntVar(&pinCount, "pins", defaultPinCount, "Number of local GPIO pins of the bridge")
	pflag.BoolVar(&activeLow, "active-low", false, "Local GPIO pins are active low")
	pflag.Parse()

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())

	var logOutput io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if logFile != "" || mqttBroker != "" {
		multi := logging.NewMultiWriter(logOutput)
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
			if err != nil {
				Exitf("Failed to open log file: %v\n", err)
			}
			defer f.Close()
			multi.Add(f)
		}
		if mqttBroker != "" {
			topic := strings.TrimSuffix(mqttPrefix, "/") + "/log"
			w, err := logging.NewMQTTWriter(ctx, mqttBroker, projectName+"-log", topic)
			if err != nil {
				Exitf("Failed to create MQTT log writer: %v\n", err)
			}
			multi.Add(w)
		}
		logOutput = multi
	}
	logger := zerolog.New(logOutput).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(levelFlag); err != nil {
		Exitf("Invalid log level '%s': %v\n", levelFlag, err)
	} else {
		logger = logger.Level(level)
	}

	svc, err := service.NewService(service.Config{
		ProgramVersion:    projectVersion,
		BoardConfigPath:   boardConfig,
		VCDPath:           vcdPath,
		PinCount:          pinCount,
		ActiveLow:         activeLow,
		MQTTBrokerAddress: mqttBroker,
		MQTTTopicPrefix:   mqttPrefix,
	}, service.Dependencies{
		Logger: logger,
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	terminal := ui.New(svc.Board())
	defer terminal.Close()
	httpServer, err := server.New(server.Config{
		Host:           serverHost,
		HTTPPort:       serverPort,
		SSHPort:        sshPort,
		SSHHostKeyPath: sshHostKey,
	}, logger, terminal, svc.Board())
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %v\n", err)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
