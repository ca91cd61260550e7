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
	"net/http"
	"strconv"
	"strings"
	"time"

	storage "cloud.google.com/go/storage"
	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// objectMetadataCache stores object metadata to speed up read-back.
// The data itself is not cached, just values like Content-Type, Cache-Control,
// etc.
var objectMetadataCache = cache.New(90*time.Second, 10*time.Minute)

// setHeaders will transfer HTTP headers from GCS metadata to the response.
func setHeaders(objectAttrs *storage.ObjectAttrs, response http.ResponseWriter) {
	if objectAttrs.CacheControl != "" {
		response.Header().Set("Cache-Control", objectAttrs.CacheControl)
	}
	if objectAttrs.ContentEncoding != "" {
		response.Header().Set("Content-Encoding", objectAttrs.ContentEncoding)
	}
	if objectAttrs.ContentLanguage != "" {
		response.Header().Set("Content-Language", objectAttrs.ContentLanguage)
	}
	if objectAttrs.ContentType != "" {
		response.Header().Set("Content-Type", objectAttrs.ContentType)
	}
	if !objectAttrs.Updated.IsZero() {
		response.Header().Set("Last-Modified", objectAttrs.Updated.UTC().Format(http.TimeFormat))
	}
	response.Header().Set("Content-Length", fmt.Sprint(objectAttrs.Size))
}

// getAttrs will get the metadata of an object, using a local cache to
// store metadata and avoid repeated metadata GETs.
func getAttrs(ctx context.Context, objectHandle *storage.ObjectHandle) (
	objectAttrs *storage.ObjectAttrs, err error) {
	maybeAttrs, hit := objectMetadataCache.Get(objectHandle.ObjectName())
	if hit {
		return maybeAttrs.(*storage.ObjectAttrs), nil
	}
	objectAttrs, err = objectHandle.Attrs(ctx)
	if err != nil {
		return nil, err
	}
	rememberAttrs(objectAttrs)
	return objectAttrs, nil
}

// rememberAttrs caches object metadata, honoring Cache-Control: max-age.
// Objects that must not be cached are dropped from the cache instead.
func rememberAttrs(objectAttrs *storage.ObjectAttrs) {
	if objectAttrs == nil {
		return
	}
	expiry, cacheable := cacheExpiry(objectAttrs.CacheControl)
	if !cacheable {
		objectMetadataCache.Delete(objectAttrs.Name)
		return
	}
	objectMetadataCache.Set(objectAttrs.Name, objectAttrs, expiry)
}

// cacheExpiry returns how long metadata with the given Cache-Control value
// may be cached: its max-age, or the cache's default expiration when there
// is none. max-age=0 and no-store are not cacheable.
func cacheExpiry(cacheControl string) (time.Duration, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))
		if directive == "no-store" {
			return 0, false
		}
	}
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}
		ccSecs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err != nil || ccSecs < 0 {
			log.Warn().Msgf("cacheExpiry: bad max-age in %q", cacheControl)
			return cache.DefaultExpiration, true
		}
		if ccSecs == 0 {
			return 0, false
		}
		return time.Second * time.Duration(ccSecs), true
	}
	return cache.DefaultExpiration, true
}
