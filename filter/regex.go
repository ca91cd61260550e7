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
	"bytes"
	"context"
	"io"
	"regexp"
)

// BlockRegex will fail the copy if the media matches any of the given regexes.
// Nothing is sent downstream when a pattern matches.
//
// This is a store-and-forward filter, in that it loads the entire media to
// scan it, so it will use memory at least equal to the source. Messages are
// small, so this is fine here; do not put it in front of large objects.
func BlockRegex(ctx context.Context, handle MediaFilterHandle, regexes []*regexp.Regexp) error {
	media := new(bytes.Buffer)
	if _, err := io.Copy(media, handle.input); err != nil {
		return FilterError(ctx, "block regex: %v", err)
	}
	for _, re := range regexes {
		if re.Match(media.Bytes()) {
			return FilterError(ctx, "prohibited pattern matched: %v", re.String())
		}
	}
	if _, err := io.Copy(handle.output, media); err != nil {
		return FilterError(ctx, "block regex: %v", err)
	}
	return nil
}
