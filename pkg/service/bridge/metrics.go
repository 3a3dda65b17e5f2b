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

package bridge

import (
	"github.com/binkynet/PinSim/pkg/metrics"
)

const (
	subSystem = "bridge"
)

var (
	// Total number of times OutputPin.Write is called
	pinWriteCounters = metrics.MustRegisterCounterVec(subSystem,
		"pin_write_total",
		"Total number of times OutputPin.Write is called",
		"pin")
	// Total number of times InputPin.Read is called
	pinReadCounters = metrics.MustRegisterCounterVec(subSystem,
		"pin_read_total",
		"Total number of times InputPin.Read is called",
		"pin")
	// Total number of failed pin reads & writes
	pinErrorCounters = metrics.MustRegisterCounterVec(subSystem,
		"pin_error_total",
		"Total number of failed pin reads & writes",
		"pin")
)
