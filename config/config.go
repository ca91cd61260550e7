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
	"net/http"
	"os"
	"time"

	"github.com/DomZippilli/gcs-save-message/backends/gcs"
	"github.com/DomZippilli/gcs-save-message/backends/proxy"
	"github.com/DomZippilli/gcs-save-message/common"
	"github.com/DomZippilli/gcs-save-message/handler"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

// Config is read from the environment.
type Config struct {
	BucketName       string        `env:"BUCKET_NAME, required"`
	ContainerPath    string        `env:"CONTAINER_PATH, default=samples-workitems"`
	Port             string        `env:"PORT, default=8080"`
	MaxBodyKB        int64         `env:"MAX_BODY_KB, default=1024"`
	LogLevel         string        `env:"LOG_LEVEL, default=info"`
	LogPretty        bool          `env:"LOG_PRETTY, default=false"`
	MetadataCacheTTL time.Duration `env:"METADATA_CACHE_TTL, default=90s"`
	WritePipeline    string        `env:"WRITE_PIPELINE, default=logging"`
}

// Load reads the Config from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}
	return &cfg, nil
}

// severities maps zerolog levels to Cloud Logging severities.
var severities = map[zerolog.Level]string{
	zerolog.TraceLevel: "DEBUG",
	zerolog.DebugLevel: "DEBUG",
	zerolog.InfoLevel:  "INFO",
	zerolog.WarnLevel:  "WARNING",
	zerolog.ErrorLevel: "ERROR",
	zerolog.FatalLevel: "CRITICAL",
	zerolog.PanicLevel: "ALERT",
}

// SetupLogging configures the global logger. Output is JSON with a Cloud
// Logging severity field unless LOG_PRETTY is set.
func SetupLogging(cfg *Config) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logging: %v", err)
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zerolog.LevelFieldName = "severity"
		zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
			if s, ok := severities[l]; ok {
				return s
			}
			return "DEFAULT"
		}
	}
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}

// Build sets up the GCS backend and returns the function's router.
func Build(ctx context.Context, cfg *Config) (http.Handler, error) {
	writePipeline, err := PipelineNamed(cfg.WritePipeline)
	if err != nil {
		return nil, err
	}
	if err := gcs.Setup(ctx, cfg.BucketName, cfg.MetadataCacheTTL); err != nil {
		return nil, err
	}
	save := handler.New(gcs.Writer{Pipeline: writePipeline}, log.Logger,
		handler.WithContainer(cfg.ContainerPath),
		handler.WithMaxBodyBytes(common.AsBytes(common.KB, cfg.MaxBodyKB)))
	read := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gcs.Read(r.Context(), w, r, ReadPipeline)
	})
	return NewRouter(save, read), nil
}

// Router routes HTTP methods to appropriate handlers.
type Router struct {
	save http.Handler
	read http.Handler
}

// NewRouter returns a Router sending POSTs to save and GETs and HEADs to read.
func NewRouter(save, read http.Handler) *Router {
	return &Router{save: save, read: read}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodPost:
		rt.save.ServeHTTP(w, r)
	case http.MethodGet, http.MethodHead:
		rt.read.ServeHTTP(w, r)
	case http.MethodOptions:
		proxy.SendOptions(ctx, w, r)
	default:
		proxy.MethodNotAllowed(ctx, w, r)
	}
}
