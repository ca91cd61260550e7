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
package filter

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// MediaFilter functions can transform bytes from input to output.
//
// Filters should not close the handle. The pipeline closes both ends when the
// filter returns, propagating any error to the neighbouring stages.
type MediaFilter func(context.Context, MediaFilterHandle) error

// Pipeline is just a slice of MediaFilters. This alias is just here for semantics.
type Pipeline []MediaFilter

// MediaFilterHandle is a pair of input and output for the filter to read and
// write. The object name is included in case the filter needs to refer to it.
type MediaFilterHandle struct {
	input  *io.PipeReader
	output *io.PipeWriter
	name   string
}

// Name returns the name of the object the media belongs to.
func (h MediaFilterHandle) Name() string {
	return h.name
}

// PipelineCopy performs a copy of input to output, with filters applied to
// the input. When a stage fails, its error is returned rather than the errors
// the later stages see on their broken pipes.
func PipelineCopy(ctx context.Context, output io.Writer, input io.Reader, name string, pipeline Pipeline) (int64, error) {
	if len(pipeline) == 0 {
		return io.Copy(output, input)
	}
	cause := new(firstError)
	inputReader, inputWriter := io.Pipe()
	// prime the pump by writing the input to the first pipe
	go func() {
		_, err := io.Copy(inputWriter, input)
		cause.set(err)
		inputWriter.CloseWithError(err)
	}()
	// variable for last pipe's reader (output) in outer scope
	lastFilterReader := inputReader
	for _, filter := range pipeline {
		filterReader, filterWriter := io.Pipe()
		handle := MediaFilterHandle{
			input:  lastFilterReader,
			output: filterWriter,
			name:   name,
		}
		go runFilter(ctx, filter, handle, cause)
		lastFilterReader = filterReader
	}
	n, err := io.Copy(output, lastFilterReader)
	// stages only fail on closed pipes after this point, so check first
	if first := cause.get(); first != nil {
		err = first
	}
	lastFilterReader.Close()
	return n, err
}

// firstError keeps the first error reported by any stage.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (f *firstError) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// runFilter runs one pipeline stage and closes its pipes with the result.
// The error is recorded before the pipes close, so it is seen before any
// error it causes downstream.
func runFilter(ctx context.Context, filter MediaFilter, handle MediaFilterHandle, cause *firstError) {
	err := filter(ctx, handle)
	if err == nil {
		// drain, so an upstream writer is never left blocked
		_, err = io.Copy(io.Discard, handle.input)
	}
	cause.set(err)
	handle.input.CloseWithError(err)
	handle.output.CloseWithError(err)
}

// NoOp does nothing to the media.
func NoOp(ctx context.Context, handle MediaFilterHandle) error {
	if _, err := io.Copy(handle.output, handle.input); err != nil {
		return fmt.Errorf("noop: %v", err)
	}
	return nil
}

// FilterIf will apply a filter if condition(name) == true; otherwise, it will apply NoOp.
func FilterIf(ctx context.Context, handle MediaFilterHandle,
	condition func(string) bool, filter MediaFilter) error {
	if condition(handle.name) {
		return filter(ctx, handle)
	}
	return NoOp(ctx, handle)
}

// FilterError is the preferred way to return errors from filters.
func FilterError(ctx context.Context, msg string, v ...interface{}) error {
	err := fmt.Errorf(msg, v...)
	log.Ctx(ctx).Error().Msgf("filter error! %v", err)
	return err
}
