package javaruntime

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	markerFile           = ".provisioned"
	incompleteMarkerFile = ".provisioning.incomplete"
)

// ProvisionMarker records a runtime unpacked by a previous download. Only
// directories carrying it are considered bundled runtimes.
type ProvisionMarker struct {
	Timestamp  time.Time `json:"timestamp"`
	Major      int       `json:"major"`
	Source     string    `json:"source"`
	Executable string    `json:"executable"` // slash separated, relative to the runtime directory
}

// ReadMarker loads the marker of a runtime directory.
func ReadMarker(dir string) (*ProvisionMarker, error) {
	data, err := os.ReadFile(filepath.Join(dir, markerFile))
	if err != nil {
		return nil, err
	}
	var marker ProvisionMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", markerFile, err)
	}
	if marker.Executable == "" {
		return nil, errors.New("marker lacks executable path")
	}
	return &marker, nil
}

// IsComplete reports whether dir holds a completed runtime of at least the
// given major version whose executable is still present.
func IsComplete(dir string, major int) bool {
	marker, err := ReadMarker(dir)
	if err != nil {
		return false
	}
	if marker.Major < major {
		return false
	}
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(marker.Executable)))
	return err == nil
}

// MarkComplete writes the marker once extraction has finished.
func MarkComplete(dir string, marker ProvisionMarker) error {
	if marker.Timestamp.IsZero() {
		marker.Timestamp = time.Now().UTC()
	}
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}

	_ = os.Remove(filepath.Join(dir, incompleteMarkerFile))
	return os.WriteFile(filepath.Join(dir, markerFile), data, 0644)
}

// MarkIncomplete records why a provisioning attempt stopped.
func MarkIncomplete(dir string, reason string) error {
	marker := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"reason":    reason,
	}
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}

	_ = os.Remove(filepath.Join(dir, markerFile))
	return os.WriteFile(filepath.Join(dir, incompleteMarkerFile), data, 0644)
}
