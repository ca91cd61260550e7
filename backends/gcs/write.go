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
package gcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/DomZippilli/gcs-save-message/common"
	"github.com/DomZippilli/gcs-save-message/filter"

	"github.com/rs/zerolog/log"
)

const contentType = "text/plain; charset=utf-8"

// Writer saves message content as objects in the configured bucket. Content
// passes through Pipeline on its way to GCS.
type Writer struct {
	Pipeline filter.Pipeline
}

// Write stores content at path. The object is only committed if the whole
// pipeline succeeds; an error from any stage or from GCS aborts the upload.
func (wr Writer) Write(ctx context.Context, path string, content string) error {
	if gcs == nil {
		return errNotSetUp
	}
	// cancelling the writer's context is how an upload is abandoned
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectWriter := gcs.Bucket(bucket).Object(path).NewWriter(ctx)
	objectWriter.ContentType = contentType
	if id := common.Invocation(ctx); id != "" {
		objectWriter.Metadata = map[string]string{"invocation": id}
	}

	if _, err := filter.PipelineCopy(ctx, objectWriter, strings.NewReader(content), path, wr.Pipeline); err != nil {
		cancel()
		objectWriter.Close()
		return fmt.Errorf("write: %v", err)
	}
	if err := objectWriter.Close(); err != nil {
		return err
	}

	attrs := objectWriter.Attrs()
	rememberAttrs(attrs)
	log.Ctx(ctx).Debug().Msgf("wrote gs://%v/%v (%vB, generation %v)",
		attrs.Bucket, attrs.Name, attrs.Size, attrs.Generation)
	return nil
}
