package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/entrhq/priceiq/pkg/types"
)

// extract asks the extraction model for one record per website. It never
// fails: call and parse errors yield a fail record for every site.
func (p *Pricer) extract(ctx context.Context, notes string, sites []string) types.Results {
	resp, err := p.provider.Respond(ctx, &llm.Request{
		Model:  p.extractionModel,
		Format: llm.FormatJSON,
		Input: []llm.Item{
			llm.NewDeveloperMessage(buildExtractionPrompt(sites)),
			llm.NewUserMessage("Research notes:\n" + notes),
		},
	})
	if err != nil {
		agentLog.Errorf("extraction call failed: %v", err)
		return types.FailResults(sites)
	}

	results, err := parseResults(resp.OutputText, sites)
	if err != nil {
		agentLog.Errorf("failed to parse extraction output: %v", err)
		return types.FailResults(sites)
	}
	return results
}

// parseResults decodes the extraction JSON and keeps exactly the requested
// sites: missing sites get a fail record, extra keys are dropped.
func parseResults(raw string, sites []string) (types.Results, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var decoded map[string]map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("invalid results JSON: %w", err)
	}

	out := make(types.Results, len(sites))
	for _, site := range sites {
		fields, ok := decoded[site]
		if !ok {
			out[site] = types.FailRecord()
			continue
		}
		rec := types.ResultRecord{
			Status:       types.StatusFail,
			Price:        field(fields, "price"),
			Availability: field(fields, "availability"),
			URL:          field(fields, "url"),
			Notes:        field(fields, "notes"),
		}
		if strings.EqualFold(field(fields, "status"), string(types.StatusSuccess)) {
			rec.Status = types.StatusSuccess
		}
		out[site] = rec
	}
	return out, nil
}

// field reads a value as text; models sometimes emit prices as numbers.
func field(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// encodeResults renders results as indented JSON without HTML escaping.
func encodeResults(results types.Results) (string, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", err
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}
