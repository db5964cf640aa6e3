package hierarchy

import (
	"fmt"
	"io"
	"os"

	"aid-portal/internal/domain"

	"gopkg.in/yaml.v3"
)

type stageFile struct {
	Status    string   `yaml:"status"`
	Role      string   `yaml:"role"`
	Assignees []string `yaml:"assignees"`
}

type file struct {
	Stages []stageFile `yaml:"stages"`
}

// Load reads the reviewer hierarchy from path. An empty path selects the
// default three-stage pipeline.
func Load(path string) (*domain.Pipeline, error) {
	if path == "" {
		return domain.DefaultPipeline(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hierarchy: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*domain.Pipeline, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode hierarchy: %w", err)
	}
	stages := make([]domain.Stage, 0, len(doc.Stages))
	for i, st := range doc.Stages {
		status, err := domain.ParseStatus(st.Status)
		if err != nil {
			return nil, fmt.Errorf("stage %d: unknown status %q: %w", i, st.Status, err)
		}
		role, err := domain.ParseRole(st.Role)
		if err != nil {
			return nil, fmt.Errorf("stage %d: unknown role %q: %w", i, st.Role, err)
		}
		stages = append(stages, domain.Stage{Status: status, Role: role, Assignees: st.Assignees})
	}
	return domain.NewPipeline(stages)
}
