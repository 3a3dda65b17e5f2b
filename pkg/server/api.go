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
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/wire"
)

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GET /wires
func (s *Server) listWires(c echo.Context) error {
	return c.JSON(http.StatusOK, s.board.Statuses())
}

// GET /wires/:wire
func (s *Server) getWire(c echo.Context) error {
	status, err := s.board.Status(c.Param("wire"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

// PUT /wires/:wire/drivers/:driver/:action
// Responds with the status of the wire after the action.
func (s *Server) driverAction(c echo.Context) error {
	wireName := c.Param("wire")
	action, err := board.ParseAction(c.Param("action"))
	if err != nil {
		return err
	}
	if err := s.board.Do(wireName, c.Param("driver"), action); err != nil {
		return err
	}
	status, err := s.board.Status(wireName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

// errorHandler maps errors onto HTTP status codes.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case board.IsNotFound(err):
		code = http.StatusNotFound
	case board.IsInvalidArgument(err):
		code = http.StatusBadRequest
	case wire.IsShortCircuit(err):
		code = http.StatusConflict
	default:
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}
	if err := c.JSON(code, ErrorResponse{Error: msg}); err != nil {
		s.log.Debug().Err(err).Msg("Failed to send error response")
	}
}
