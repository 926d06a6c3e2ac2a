package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cv-portfolio/internal/portfolio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `Jane Doe
jane.doe@example.com
+27 82 123 4567
Profile
Cloud engineer building payment platforms.
Education
BSc Computer Science
Experience
DevOps Engineer at Acme
Skills
Go, Docker, Kubernetes
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func decodeLines(t *testing.T, out string) []extractResult {
	t.Helper()
	var results []extractResult
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r extractResult
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		results = append(results, r)
	}
	return results
}

func TestExtract(t *testing.T) {
	path := writeFile(t, "jane.txt", sampleCV)

	out, err := execute(t, "", "extract", "--validate", "--recommend", "--ocr-url", "", path)
	require.NoError(t, err)

	results := decodeLines(t, out)
	require.Len(t, results, 1)
	res := results[0]
	assert.Equal(t, path, res.File)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.CV)
	assert.Equal(t, "Jane Doe", res.CV.Name)
	assert.Equal(t, "Go, Docker, Kubernetes", res.CV.Skills)
	require.NotNil(t, res.Template)
	assert.Equal(t, portfolio.TemplateSpace, res.Template.Template)
}

func TestExtract_KeepsArgumentOrderAndReportsFailures(t *testing.T) {
	good := writeFile(t, "a.txt", sampleCV)
	blank := writeFile(t, "b.txt", "   \n")
	other := writeFile(t, "c.txt", "John Smith\njohn@example.com\n")

	out, err := execute(t, "", "extract", "--workers", "2", "--ocr-url", "", good, blank, other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 files failed")

	results := decodeLines(t, out)
	require.Len(t, results, 3)
	assert.Equal(t, good, results[0].File)
	assert.Equal(t, blank, results[1].File)
	assert.Contains(t, results[1].Error, "no text")
	assert.Nil(t, results[1].CV)
	assert.Equal(t, "John Smith", results[2].CV.Name)
}

func TestExtract_Args(t *testing.T) {
	_, err := execute(t, "", "extract")
	assert.Error(t, err)

	path := writeFile(t, "a.txt", sampleCV)
	_, err = execute(t, "", "extract", "--workers", "0", "--ocr-url", "", path)
	assert.ErrorContains(t, err, "--workers")
}

func TestTemplate_FromFile(t *testing.T) {
	path := writeFile(t, "cv.json", `{"summary":"Financial analyst","skills":["excel","budget"],"experience":[{"title":"Analyst","company":"First Bank","description":"banking reports","startDate":"2019-01","endDate":"2021-01"}],"education":[]}`)

	out, err := execute(t, "", "template", path)
	require.NoError(t, err)

	var result portfolio.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, portfolio.TemplateOffice, result.Template)
	require.NotNil(t, result.Customizations.ExperienceYears)
	assert.Equal(t, 2, *result.Customizations.ExperienceYears)
}

func TestTemplate_FromStdin(t *testing.T) {
	out, err := execute(t, `{"summary":"conservation and ecology fieldwork"}`, "template", "-")
	require.NoError(t, err)

	var result portfolio.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, portfolio.TemplateForest, result.Template)
}

func TestTemplate_InvalidJSON(t *testing.T) {
	_, err := execute(t, "{", "template", "-")
	assert.ErrorContains(t, err, "failed to parse CV data")
}

func TestReprocess_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "", "reprocess")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
