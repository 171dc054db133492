// Package settings loads shop-level settings from a YAML file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings mirrors the settings.yaml layout. DeliveryCharge is the primary
// rate table for shipping cost; zones missing from it fall back to the
// service-level rates in config.
type Settings struct {
	DeliveryCharge DeliveryCharge `yaml:"delivery_charge"`
}

type DeliveryCharge struct {
	InsideDhaka  *int `yaml:"inside_dhaka"`
	OutsideDhaka *int `yaml:"outside_dhaka"`
}

// Load reads the settings file. A missing file yields empty settings, not an
// error; the editor then relies entirely on the fallback rates.
func Load(path string) (*Settings, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(content, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return &s, nil
}

// Rate returns the delivery charge for the zone and whether the table had an
// entry for it. "Inside Dhaka" is the near zone; every other zone uses the
// out-of-zone rate.
func (s *Settings) Rate(insideDhaka bool) (int, bool) {
	if s == nil {
		return 0, false
	}
	if insideDhaka {
		if s.DeliveryCharge.InsideDhaka != nil {
			return *s.DeliveryCharge.InsideDhaka, true
		}
		return 0, false
	}
	if s.DeliveryCharge.OutsideDhaka != nil {
		return *s.DeliveryCharge.OutsideDhaka, true
	}
	return 0, false
}
