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
	"time"

	storage "cloud.google.com/go/storage"
	cache "github.com/patrickmn/go-cache"
)

var bucket string
var gcs *storage.Client

var errNotSetUp = errors.New("gcs backend is not set up")

// Setup performs one-time setup for the GCS backend.
func Setup(ctx context.Context, bucketName string, metadataTTL time.Duration) error {
	if bucketName == "" {
		return errors.New("gcs setup: no bucket name")
	}
	bucket = bucketName
	objectMetadataCache = cache.New(metadataTTL, 10*time.Minute)

	// initialize the client
	var err error
	gcs, err = storage.NewClient(ctx)
	if err != nil {
		return err
	}
	return nil
}
