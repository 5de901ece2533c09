package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/libgest/internal/library"
)

// MaxManifestDevices bounds one batch.
const MaxManifestDevices = 500

// Manifest lists the devices of one batch. It is read from YAML; JSON
// manifests parse too.
type Manifest struct {
	Name    string           `yaml:"name" json:"name"`
	Devices []library.Device `yaml:"devices" json:"devices"`
}

// ParseManifest decodes and checks a manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Devices) == 0 {
		return nil, fmt.Errorf("manifest has no devices")
	}
	if len(m.Devices) > MaxManifestDevices {
		return nil, fmt.Errorf("manifest has %d devices (max %d)", len(m.Devices), MaxManifestDevices)
	}
	for i, d := range m.Devices {
		if d.Name == "" && d.UUID == "" {
			return nil, fmt.Errorf("device %d: name or uuid is required", i)
		}
	}
	return &m, nil
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}
