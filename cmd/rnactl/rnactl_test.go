package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"rna/pkg/catalog"

	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, subCategories string) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		catalog.CategoriesFile:    `[{"id":"C1","name":"Shelter"},{"id":"C2","name":"Water"}]`,
		catalog.SubCategoriesFile: subCategories,
		catalog.QuestionsFile: `[
			{"id":"Q1","subCategoryId":"S1","text":"Roof intact?","type":"yes-no"},
			{"id":"Q2","subCategoryId":"S1","text":"Walls intact?","type":"yes-no"},
			{"id":"Q3","subCategoryId":"S2","text":"Water point working?","type":"yes-no"}
		]`,
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600))
	}

	return dir
}

const consistentSubCategories = `[{"id":"S1","categoryId":"C1","name":"Damage"},{"id":"S2","categoryId":"C2","name":"Access"}]`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestProgressCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rnas/r1/answers", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answers":[{"id":"a1","rnaId":"r1","questionId":"Q1","value":"true"},{"id":"a2","rnaId":"r1","questionId":"Q3","value":"false"}]}`))
	}))
	defer server.Close()

	out, err := run(t, "progress", "r1", "--api", server.URL, "--catalog", writeCatalog(t, consistentSubCategories))
	require.NoError(t, err)

	assert.Contains(t, out, "RNA r1")
	assert.Regexp(t, `CATEGORY\s*│\s*ANSWERED\s*│\s*TOTAL\s*│\s*COMPLETE\s*│\s*PROGRESS`, out)
	assert.Regexp(t, `Shelter\s*│\s*1\s*│\s*2\s*│\s*50%\s*│\s*█{10}░{10}`, out)
	assert.Regexp(t, `Water\s*│\s*1\s*│\s*1\s*│\s*100%\s*│\s*█{20}\s`, out)
	assert.Regexp(t, `TOTAL\s*│\s*2\s*│\s*3\s*│\s*67%\s*│\s*█{13}░{7}`, out)
	assert.NotContains(t, out, "\x1b[", "colors are dropped when not writing to a terminal")
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent int64
		filled  int
	}{
		{0, 0},
		{49, 9},
		{50, 10},
		{100, 20},
		{150, 20},
		{-5, 0},
	}

	for _, tt := range tests {
		bar := ansi.Strip(progressBar(decimal.NewFromInt(tt.percent)))
		assert.Equal(t, tt.filled, strings.Count(bar, "█"), "percent %d", tt.percent)
		assert.Equal(t, barWidth, utf8.RuneCountInString(bar))
	}
}

func TestProgressCommand_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := run(t, "progress", "missing", "--api", server.URL, "--catalog", writeCatalog(t, consistentSubCategories))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rna missing not found")
}

func TestProgressCommand_RequiresID(t *testing.T) {
	_, err := run(t, "progress")
	assert.Error(t, err)
}

func TestSeverityCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/rnas/r1/answers":
			_, _ = w.Write([]byte(`{"answers":[{"id":"a1","rnaId":"r1","questionId":"Q1","value":"true"},{"id":"a2","rnaId":"r1","questionId":"Q3","value":"true"}]}`))
		case "/api/v1/rnas/r2/answers":
			_, _ = w.Write([]byte(`{"answers":[{"id":"a3","rnaId":"r2","questionId":"Q2","value":"true"},{"id":"a4","rnaId":"r2","questionId":"Q3","value":"false"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	out, err := run(t, "severity", "r2", "r1", "--api", server.URL, "--catalog", writeCatalog(t, consistentSubCategories))
	require.NoError(t, err)

	assert.Regexp(t, `r1\s*│\s*2\.00\s*│\s*100\s*│\s*█{20}`, out)
	assert.Regexp(t, `r2\s*│\s*1\.00\s*│\s*50\s*│\s*█{10}░{10}`, out)
	assert.Less(t, strings.Index(out, "r1"), strings.Index(out, "r2"), "most severe first")

	_, err = run(t, "severity", "r9", "--api", server.URL, "--catalog", writeCatalog(t, consistentSubCategories))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rna r9 not found")
}

func TestCatalogCheck(t *testing.T) {
	out, err := run(t, "catalog", "check", "--catalog", writeCatalog(t, consistentSubCategories))
	require.NoError(t, err)
	assert.Contains(t, out, "catalog ok: 2 categories, 2 sub-categories, 3 questions")
}

func TestCatalogCheck_ReportsIssues(t *testing.T) {
	dir := writeCatalog(t, `[{"id":"S1","categoryId":"C1","name":"Damage"},{"id":"S2","categoryId":"C9","name":"Access"}]`)

	out, err := run(t, "catalog", "check", "--catalog", dir)
	require.Error(t, err)
	assert.Contains(t, out, "S2")
	assert.Contains(t, err.Error(), "integrity issue")
}

func TestCatalogCheck_EmbeddedCatalog(t *testing.T) {
	out, err := run(t, "catalog", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog ok")
}
