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
	"github.com/pkg/errors"
)

var (
	// InvalidArgumentError is returned for invalid configurations and requests.
	InvalidArgumentError = errors.New("invalid argument")
	// NotFoundError is returned when a wire or driver does not exist.
	NotFoundError = errors.New("not found")
	// AlreadyExistsError is returned when adding a wire or driver with a
	// name that is in use.
	AlreadyExistsError = errors.New("already exists")
	maskAny            = errors.WithStack
)

// IsNotFound returns true when the cause of err is NotFoundError.
func IsNotFound(err error) bool {
	return errors.Cause(err) == NotFoundError
}

// IsInvalidArgument returns true when the cause of err is InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	return errors.Cause(err) == InvalidArgumentError
}
