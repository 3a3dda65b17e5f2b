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
	"github.com/pkg/errors"
)

var (
	// InvalidArgumentError is returned for malformed commands and configurations.
	InvalidArgumentError = errors.New("invalid argument")
	// InvalidPinError is returned for pin indexes outside the range of a device.
	InvalidPinError = errors.New("invalid pin")
	// InvalidDirectionError is returned when a pin is used against its direction.
	InvalidDirectionError = errors.New("invalid direction")
	maskAny               = errors.WithStack
)

// IsInvalidArgument returns true when the cause of err is InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	return errors.Cause(err) == InvalidArgumentError
}

// IsInvalidPin returns true when the cause of err is InvalidPinError.
func IsInvalidPin(err error) bool {
	return errors.Cause(err) == InvalidPinError
}

// IsInvalidDirection returns true when the cause of err is InvalidDirectionError.
func IsInvalidDirection(err error) bool {
	return errors.Cause(err) == InvalidDirectionError
}
