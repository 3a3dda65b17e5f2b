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

package wire

import "github.com/binkynet/PinSim/pkg/pins"

// Snapshot is a copy of the state of a wire.
type Snapshot struct {
	Name    string       `json:"name"`
	Pull    pins.State   `json:"pull"`
	Drivers []pins.State `json:"drivers"`
}

// Level resolves the snapshot.
// Returns false when the drivers conflict.
func (s Snapshot) Level() (pins.State, bool) {
	return resolveLevel(s.Drivers, s.Pull)
}
