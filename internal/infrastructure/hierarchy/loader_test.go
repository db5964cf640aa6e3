package hierarchy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aid-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullHierarchy(t *testing.T) {
	p, err := Parse(strings.NewReader(`
stages:
  - status: new_submission
    role: project_officer
  - status: under_review
    role: program_manager
  - status: founder_review
    role: founder
    assignees: [Founder@example.org]
`))
	require.NoError(t, err)
	stages := p.Stages()
	require.Len(t, stages, 3)
	assert.Equal(t, domain.RoleFounder, stages[2].Role)
	assert.Equal(t, []string{"founder@example.org"}, stages[2].Assignees)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown role":   "stages:\n  - status: new_submission\n    role: janitor\n",
		"unknown status": "stages:\n  - status: limbo\n    role: executive\n",
		"unknown field":  "stages:\n  - status: new_submission\n    role: executive\n    color: red\n",
		"no stages":      "stages: []\n",
		"terminal stage": "stages:\n  - status: approved\n    role: executive\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPipeline().Stages(), p.Stages())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierarchy.yml")
	require.NoError(t, os.WriteFile(path, []byte("stages:\n  - status: new_submission\n    role: executive\n"), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleExecutive, p.First().Role)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
