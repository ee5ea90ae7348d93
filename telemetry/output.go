package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/remd/config"
)

// OutputManager handles structured run output with CSV logging.
// Replica goroutines share one manager; writes are serialized.
type OutputManager struct {
	dir         string
	windowsFile *os.File

	mu sync.Mutex
	// Track if headers have been written
	windowsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the
// output directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	windowsPath := filepath.Join(dir, "windows.csv")
	f, err := os.Create(windowsPath)
	if err != nil {
		return nil, fmt.Errorf("creating windows.csv: %w", err)
	}
	om.windowsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteWindow writes one window stats record to windows.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}

	om.mu.Lock()
	defer om.mu.Unlock()

	records := []WindowStats{stats}

	if !om.windowsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.windowsFile); err != nil {
			return fmt.Errorf("writing windows.csv: %w", err)
		}
		om.windowsHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.windowsFile); err != nil {
			return fmt.Errorf("writing windows.csv: %w", err)
		}
	}

	return nil
}

// Close closes the output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return om.windowsFile.Close()
}
