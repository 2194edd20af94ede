package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cleanMarkdownWrapper strips ```json fences some models wrap around their
// output despite instructions.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// parseVerdict parses the strict JSON verdict from provider output. A
// missing classification field is an error; the adapter converts it into
// the conservative fallback.
func parseVerdict(content string) (Response, error) {
	content = cleanMarkdownWrapper(content)

	var resp Response
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return Response{}, fmt.Errorf("failed to parse JSON verdict: %w", err)
	}

	if resp.Classification == "" {
		return Response{}, fmt.Errorf("no classification found in response")
	}

	return resp, nil
}
