package resources

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed static/*.yaml
var staticFS embed.FS

type staticContent struct {
	endpoints     any
	rateLimits    any
	documentation any
	system        map[string]any
}

func loadStatic() (*staticContent, error) {
	c := &staticContent{}
	for name, target := range map[string]any{
		"endpoints.yaml":     &c.endpoints,
		"rate-limits.yaml":   &c.rateLimits,
		"documentation.yaml": &c.documentation,
		"system.yaml":        &c.system,
	} {
		data, err := staticFS.ReadFile("static/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := yaml.Unmarshal(data, target); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return c, nil
}
