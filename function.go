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

// Package savemessage is the Cloud Functions entry point. It saves the message
// of a POSTed JSON body to GCS as a text object named after the time of the
// invocation.
package savemessage

import (
	"context"
	"net/http"
	"sync"

	"github.com/DomZippilli/gcs-save-message/config"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/rs/zerolog/log"
)

var (
	setupOnce sync.Once
	router    http.Handler
	setupErr  error
)

func init() {
	functions.HTTP("httpTriggerSaveMessage", SaveMessage)
}

// setup loads configuration and connects to GCS on the first invocation.
func setup() {
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		setupErr = err
		return
	}
	if err := config.SetupLogging(cfg); err != nil {
		setupErr = err
		return
	}
	router, setupErr = config.Build(ctx, cfg)
}

// SaveMessage is the entry point for the cloud function.
func SaveMessage(w http.ResponseWriter, r *http.Request) {
	setupOnce.Do(setup)
	if setupErr != nil {
		log.Error().Msgf("setup: %v", setupErr)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	router.ServeHTTP(w, r)
}
