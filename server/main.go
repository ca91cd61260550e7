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
package main

import (
	"context"
	"net/http"

	"github.com/DomZippilli/gcs-save-message/config"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Msgf("%v", err)
	}
	if err := config.SetupLogging(cfg); err != nil {
		log.Fatal().Msgf("%v", err)
	}

	log.Info().Msg("starting server...")
	router, err := config.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Msgf("setup: %v", err)
	}
	http.Handle("/", router)

	// Start HTTP server.
	log.Info().Msgf("listening on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Fatal().Msgf("%v", err)
	}
}
