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
	"errors"
	"net/http"

	"github.com/DomZippilli/gcs-save-message/common"
	"github.com/DomZippilli/gcs-save-message/filter"

	storage "cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
)

// Read returns saved objects from the GCS bucket, mapping the URL path to
// object names. HEAD requests get the headers only.
func Read(ctx context.Context, response http.ResponseWriter,
	request *http.Request, pipeline filter.Pipeline) {
	if gcs == nil {
		log.Error().Msgf("read: %v", errNotSetUp)
		http.Error(response, "", http.StatusInternalServerError)
		return
	}
	objectName := common.NormalizePath(request.URL.Path)
	if objectName == "" {
		http.Error(response, "", http.StatusNotFound)
		return
	}

	// get the object handle and headers. Attributes are cached and obey
	// Cache-Control, so this will not call GCS unless there's a miss.
	objectHandle := gcs.Bucket(bucket).Object(objectName)
	objectAttrs, err := getAttrs(ctx, objectHandle)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			http.Error(response, "", http.StatusNotFound)
			return
		}
		log.Error().Msgf("read: %v", err)
		http.Error(response, "", http.StatusInternalServerError)
		return
	}
	setHeaders(objectAttrs, response)
	if request.Method == http.MethodHead {
		response.WriteHeader(http.StatusOK)
		return
	}

	objectContent, err := objectHandle.NewReader(ctx)
	if err != nil {
		// the cached attributes may be stale
		objectMetadataCache.Delete(objectName)
		response.Header().Del("Content-Length")
		if errors.Is(err, storage.ErrObjectNotExist) {
			http.Error(response, "", http.StatusNotFound)
			return
		}
		log.Error().Msgf("read: %v", err)
		http.Error(response, "", http.StatusInternalServerError)
		return
	}
	defer objectContent.Close()

	if len(pipeline) > 0 {
		// filters may change the length
		response.Header().Del("Content-Length")
	}
	if _, err = filter.PipelineCopy(ctx, response, objectContent, objectName, pipeline); err != nil {
		log.Error().Msgf("read: %v", err)
	}
}
