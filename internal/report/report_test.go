package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOutcome(t *testing.T) {
	r := New()
	r.Finish()
	require.Equal(t, OutcomeSuccess, r.Outcome)

	r = New()
	r.AddIssue(IssueMalformedFrontmatter, "content", SeverityWarning, "a.md", errors.New("bad line"))
	r.Finish()
	require.Equal(t, OutcomeWarning, r.Outcome)
	require.Len(t, r.Warnings(), 1)

	r = New()
	r.AddIssue(IssueMalformedFrontmatter, "content", SeverityWarning, "a.md", errors.New("bad line"))
	r.AddIssue(IssueStemCollision, "content", SeverityError, "", errors.New("collision"))
	r.Finish()
	require.Equal(t, OutcomeFailed, r.Outcome)

	r = New()
	r.AddIssue(IssueCanceled, "content", SeverityError, "", errors.New("canceled"))
	r.Finish()
	require.Equal(t, OutcomeCanceled, r.Outcome)
}

func TestNew_UniqueIDs(t *testing.T) {
	require.NotEqual(t, New().ID, New().ID)
}

func TestPersist_JSON(t *testing.T) {
	dir := t.TempDir()
	r := New()
	r.AddPage(Page{Source: "content/a.md", Output: "build/blog/a.html", Fingerprint: "abc"})
	r.RecordStage("content", 0)
	require.NoError(t, r.Persist(dir, ""))

	data, err := os.ReadFile(filepath.Join(dir, "build-report.json"))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, r.ID, decoded["id"])
	require.Equal(t, "success", decoded["outcome"])
	require.Len(t, decoded["pages"], 1)

	summary, err := os.ReadFile(filepath.Join(dir, SummaryFileName))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(summary), "id="+r.ID))
	require.NoFileExists(t, filepath.Join(dir, "build-report.json.tmp"))
}

func TestPersist_YAML(t *testing.T) {
	dir := t.TempDir()
	r := New()
	r.AddIssue(IssueMalformedFrontmatter, "content", SeverityWarning, "a.md", errors.New("bad"))
	require.NoError(t, r.Persist(dir, FormatYAML))

	data, err := os.ReadFile(filepath.Join(dir, "build-report.yaml"))
	require.NoError(t, err)
	var decoded struct {
		ID      string  `yaml:"id"`
		Outcome string  `yaml:"outcome"`
		Issues  []Issue `yaml:"issues"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Equal(t, r.ID, decoded.ID)
	require.Equal(t, "warning", decoded.Outcome)
	require.Equal(t, IssueMalformedFrontmatter, decoded.Issues[0].Code)
	require.Equal(t, "a.md", decoded.Issues[0].Source)
}

func TestPersist_UnknownFormat(t *testing.T) {
	require.Error(t, New().Persist(t.TempDir(), Format("xml")))
}
