// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/DomZippilli/gcs-save-message/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultContainer is the object name prefix messages are written under.
const DefaultContainer = "samples-workitems"

// BlobWriter writes content to a path in blob storage. Write returns when the
// storage service has accepted the object, or with the reason it did not.
type BlobWriter interface {
	Write(ctx context.Context, path string, content string) error
}

// Handler saves the message of a POSTed JSON body as a text object named
// after the time of the invocation.
type Handler struct {
	storage   BlobWriter
	logger    zerolog.Logger
	container string
	maxBody   int64
	now       func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithContainer sets the object name prefix.
func WithContainer(container string) Option {
	return func(h *Handler) {
		h.container = container
	}
}

// WithMaxBodyBytes limits how much of a request body is read. Larger bodies
// are rejected as invalid input.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		h.maxBody = n
	}
}

// WithClock replaces the wall clock used to name objects.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// New returns a Handler writing to storage and logging to logger.
func New(storage BlobWriter, logger zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		storage:   storage,
		logger:    logger,
		container: DefaultContainer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP reads the request body and writes exactly one JSON response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(r.Body)
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	payload, err := io.ReadAll(body)
	var resp Response
	if err != nil {
		h.logger.Error().Err(err).Msg("Error reading body")
		resp = failure(http.StatusBadRequest, invalidInput, &ParseError{Err: err})
	} else {
		resp = h.Handle(r.Context(), payload)
	}
	if err := resp.Write(w); err != nil {
		h.logger.Error().Err(err).Msg("Error writing response")
	}
}

// Handle parses body, writes the message to storage and returns the response
// for the invocation.
func (h *Handler) Handle(ctx context.Context, body []byte) Response {
	id := uuid.NewString()
	logger := h.logger.With().Str("invocation", id).Logger()
	ctx = logger.WithContext(common.WithInvocation(ctx, id))

	logger.Info().Msg("HTTP trigger function processed a request.")

	message, err := ParseMessage(body)
	if err != nil {
		logger.Error().Err(err).Msg("Error parsing body")
		return failure(http.StatusBadRequest, invalidInput, err)
	}

	path := common.ObjectPath(h.container, ObjectName(h.now()))
	logger.Info().Str("content", message).Msg("Message to be written to blob")
	logger.Info().Str("path", path).Msg("Blob name")

	if err := h.storage.Write(ctx, path, message); err != nil {
		werr := &WriteError{Path: path, Err: err}
		logger.Error().Err(werr).Msg("Error writing message to blob")
		return failure(http.StatusInternalServerError, writeFailed, werr)
	}

	logger.Info().Str("path", path).Msg("Blob written successfully")
	return success(message)
}
