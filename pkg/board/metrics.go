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

package board

import (
	"github.com/binkynet/PinSim/pkg/metrics"
)

const (
	subSystem = "board"
)

var (
	// Total number of driver actions per wire & action
	driverActionCounters = metrics.MustRegisterCounterVec(subSystem,
		"driver_action_total",
		"Total number of driver actions",
		"wire", "action")
	// Total number of short circuits per wire
	shortCircuitCounters = metrics.MustRegisterCounterVec(subSystem,
		"short_circuit_total",
		"Total number of short circuits",
		"wire")
	// Total number of level changes per wire
	levelChangeCounters = metrics.MustRegisterCounterVec(subSystem,
		"level_change_total",
		"Total number of level changes",
		"wire")
	// Current level per wire (1=high, 0=low, -1=floating)
	levelGauges = metrics.MustRegisterGaugeVec(subSystem,
		"wire_level",
		"Current level of wire (1=high, 0=low, -1=floating)",
		"wire")
	// Number of drivers per wire
	driverGauges = metrics.MustRegisterGaugeVec(subSystem,
		"wire_drivers",
		"Number of drivers connected to wire",
		"wire")
)
