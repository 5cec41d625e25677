package values

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DataDir is the directory under a repository root that holds the value files.
const DataDir = "data"

const governanceFile = "governance.json"

// LoadFork loads the node's private values from <root>/data.
func LoadFork(root string, logger *zap.Logger) *ValueSet {
	return load(root, false, logger)
}

// LoadMain loads shared law from <root>/data, including the governance document.
func LoadMain(root string, logger *zap.Logger) *ValueSet {
	return load(root, true, logger)
}

// load never fails: an unreadable or invalid file is logged and treated as empty.
func load(root string, withGovernance bool, logger *zap.Logger) *ValueSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := filepath.Join(root, DataDir)
	vs := NewValueSet()

	for _, kind := range Kinds {
		path := filepath.Join(base, string(kind)+".json")
		m, err := LoadMappingFile(path)
		if err != nil {
			logger.Error("Failed to load values file", zap.String("path", path), zap.Error(err))
			m = NewMapping()
		}
		vs.setMapping(kind, m)
	}

	if withGovernance {
		path := filepath.Join(base, governanceFile)
		doc, err := loadRawJSON(path)
		if err != nil {
			logger.Error("Failed to load governance document", zap.String("path", path), zap.Error(err))
		}
		vs.Governance = doc
	}
	return vs
}

// LoadMappingFile reads one values document from disk.
func LoadMappingFile(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	m, err := ParseMapping(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

func loadRawJSON(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("failed to parse %s: invalid JSON", path)
	}
	return json.RawMessage(data), nil
}
