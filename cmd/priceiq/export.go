package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/priceiq/pkg/types"
)

// productResult is one entry of the exported file.
type productResult struct {
	Product string        `json:"product"`
	Data    types.Results `json:"data"`
}

func parseResults(content string) (types.Results, error) {
	var results types.Results
	if err := json.Unmarshal([]byte(content), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// saveResults writes product_pricer_<user>.json into dir and returns its path
// and contents.
func saveResults(dir, user string, results []productResult) (string, []byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", nil, fmt.Errorf("failed to encode results: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("product_pricer_%s.json", user))
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return "", nil, fmt.Errorf("failed to write results: %w", err)
	}
	return path, buf.Bytes(), nil
}
