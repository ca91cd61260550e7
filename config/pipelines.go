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
package config

import (
	"context"
	"fmt"
	"regexp"

	"github.com/DomZippilli/gcs-save-message/filter"
)

// DEFAULT: Messages are stored as given, and the write is logged.
var LoggingOnly = filter.Pipeline{
	filter.LogRequest,
}

// No funny stuff.
var NoFilters = filter.Pipeline{}

// Refuse to store messages containing SSNs.
var BlockSSNs = filter.Pipeline{
	blockSSNs,
	filter.LogRequest,
}

// ReadPipeline is applied to objects served back on GET.
var ReadPipeline = NoFilters

var ssnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([0-9]{3}-[0-9]{2}-[0-9]{4})\b`),
}

// blockSSNs will block content that matches SSN regex.
func blockSSNs(c context.Context, mfh filter.MediaFilterHandle) error {
	return filter.BlockRegex(c, mfh, ssnPatterns)
}

var pipelines = map[string]filter.Pipeline{
	"logging":    LoggingOnly,
	"none":       NoFilters,
	"block-ssns": BlockSSNs,
}

// PipelineNamed returns the write pipeline selected by name.
func PipelineNamed(name string) (filter.Pipeline, error) {
	pipeline, ok := pipelines[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown pipeline %q", name)
	}
	return pipeline, nil
}
