// Package generator turns extracted signatures into candidate pytest code
// through a hosted text-generation model, and persists validated candidates.
package generator

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Generator wraps a TextClient with response cleanup and file persistence.
type Generator struct {
	client TextClient
}

// New creates a Generator over the given client.
func New(client TextClient) *Generator {
	return &Generator{client: client}
}

// Generate produces cleaned candidate code for a prompt. The result is not
// validated here; callers run it through the validator before persisting.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	raw, err := g.client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generation failed via %s: %w", g.client.Name(), err)
	}
	code := CleanResponse(raw)
	if code == "" {
		return "", ErrEmptyResponse
	}
	return code, nil
}

// CleanResponse strips the decorations models wrap around code: markdown
// code fences and chain-of-thought <think> spans.
func CleanResponse(text string) string {
	code := strings.TrimSpace(text)

	if strings.HasPrefix(code, "```") && strings.HasSuffix(code, "```") {
		lines := strings.Split(code, "\n")
		if len(lines) >= 3 {
			code = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	if start := strings.Index(code, "<think>"); start != -1 {
		if end := strings.Index(code, "</think>"); end != -1 && end > start {
			code = strings.TrimSpace(code[:start] + code[end+len("</think>"):])
		}
	}

	return code
}

// TestFileName derives a stable file name for a generated test: the target
// name plus a short content hash, so regenerated variants never collide.
func TestFileName(targetName, code string) string {
	sum := md5.Sum([]byte(code))
	return fmt.Sprintf("test_%s_%s.py", targetName, hex.EncodeToString(sum[:])[:6])
}

// WriteTest persists validated candidate code under dir and returns the
// written path. The directory is created on demand.
func WriteTest(dir, targetName, code string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, TestFileName(targetName, code))
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
