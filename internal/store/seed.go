// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"

	"github.com/tomtom215/adobe-destination/internal/models"
)

// Where the boot settings came from.
const (
	SourceNone     = "none"
	SourceSnapshot = "snapshot"
	SourceFile     = "file"
)

// Loader is the read side of the settings store.
type Loader interface {
	Load(ctx context.Context) (models.Map, bool, error)
}

// LoadSettingsFile reads a settings blob from a JSON or YAML file. Files
// ending in .json are decoded as JSON, everything else as YAML.
func LoadSettingsFile(path string) (models.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var raw map[string]interface{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &raw)
	} else {
		raw, err = yaml.Parser().Unmarshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return models.MapFromInterface(raw), nil
}

// InitialSettings picks the settings to replay as the initial update at
// boot: a stored snapshot wins over the seed file. Either source may be
// absent (nil loader, empty path); the result is then nil with SourceNone.
func InitialSettings(ctx context.Context, loader Loader, seedFile string) (models.Map, string, error) {
	if loader != nil {
		settings, ok, err := loader.Load(ctx)
		if err != nil {
			return nil, SourceNone, err
		}
		if ok {
			return settings, SourceSnapshot, nil
		}
	}

	if seedFile != "" {
		settings, err := LoadSettingsFile(seedFile)
		if err != nil {
			return nil, SourceNone, err
		}
		return settings, SourceFile, nil
	}

	return nil, SourceNone, nil
}
