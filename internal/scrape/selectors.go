package scrape

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// selectorsFile represents the structure of the selectors configuration file.
type selectorsFile struct {
	Selectors []string `yaml:"selectors"`
}

// DefaultSelectors is the built-in extraction fallback chain, probed in order:
// semantic article container, common CMS content classes, the main landmark,
// then site-specific classes seen on frequent sources.
func DefaultSelectors() []string {
	return []string{
		"article",
		".article-content",
		".post-content",
		".entry-content",
		".content-text",
		"main",
		".materia-conteudo",
		".news-item-body",
	}
}

// LoadSelectors reads the selector chain from a YAML file. A missing file is
// not an error; the built-in chain is used instead.
func LoadSelectors(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultSelectors(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSelectors(), nil
		}
		return nil, fmt.Errorf("read selectors file: %w", err)
	}

	var file selectorsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode selectors file: %w", err)
	}

	selectors := make([]string, 0, len(file.Selectors))
	for _, sel := range file.Selectors {
		if sel = strings.TrimSpace(sel); sel != "" {
			selectors = append(selectors, sel)
		}
	}
	if len(selectors) == 0 {
		return DefaultSelectors(), nil
	}
	return selectors, nil
}
