package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFormats(t *testing.T) {
	want := Personal{
		Name:      "Ada Lovelace",
		Title:     "Software Engineer",
		Bio:       "I build reliable systems and the tools around them.",
		Email:     "ada@example.com",
		Location:  "London, United Kingdom",
		ResumeURL: "/static/resume.pdf",
	}

	for _, file := range []string{"portfolio.yaml", "portfolio.toml", "portfolio.json"} {
		t.Run(file, func(t *testing.T) {
			doc, err := Load(filepath.Join("testdata", file))
			require.NoError(t, err)

			if diff := cmp.Diff(want, doc.Personal); diff != "" {
				t.Errorf("personal mismatch (-want +got):\n%s", diff)
			}

			project, ok := doc.FindProject("analytical-engine")
			require.True(t, ok)
			assert.Equal(t, "Analytical Engine", project.Name)
			assert.Equal(t, []string{"Go", "SQLite"}, project.Technologies)
			assert.True(t, project.Featured)
			assert.True(t, project.HasLinks())
			assert.Equal(t, "Languages", doc.Skills[0].Name)
			assert.Len(t, doc.Skills[0].Skills, 2)
		})
	}
}

func TestLoadYAMLDetails(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "portfolio.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "London", doc.Personal.City())
	assert.Len(t, doc.FeaturedProjects(), 1)
	require.Len(t, doc.Experience, 1)
	assert.True(t, doc.Experience[0].Current)
	assert.Equal(t, "1835", doc.Education[0].EndYear)

	notes, ok := doc.FindProject("notes")
	require.True(t, ok)
	assert.False(t, notes.HasLinks())

	_, ok = doc.FindProject("missing")
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load("portfolio.xml")
		require.Error(t, err)
		assert.True(t, folioerrors.IsType(err, folioerrors.ErrorTypeValidation))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.True(t, folioerrors.IsType(err, folioerrors.ErrorTypeIO))
		assert.Contains(t, err.Error(), folioerrors.ErrCodeFileNotFound)
	})

	t.Run("malformed document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"personal": `), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, folioerrors.IsType(err, folioerrors.ErrorTypeContent))
		assert.Contains(t, err.Error(), folioerrors.ErrCodeContentParse)
	})

	t.Run("duplicate slugs", func(t *testing.T) {
		_, err := Load(filepath.Join("testdata", "duplicate_slugs.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `projects[1].slug "engine" duplicates projects[0]`)
	})
}

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr string
	}{
		{
			name: "valid",
			doc: Document{
				Personal: Personal{Name: "Ada", Email: "ada@example.com"},
				Projects: []Project{{Slug: "a", Name: "A"}, {Slug: "b", Name: "B"}},
			},
		},
		{
			name:    "missing owner",
			doc:     Document{},
			wantErr: "personal.name is required; personal.email is required",
		},
		{
			name: "missing slug",
			doc: Document{
				Personal: Personal{Name: "Ada", Email: "ada@example.com"},
				Projects: []Project{{Name: "A"}},
			},
			wantErr: "projects[0].slug is required",
		},
		{
			name: "reserved characters",
			doc: Document{
				Personal: Personal{Name: "Ada", Email: "ada@example.com"},
				Projects: []Project{{Slug: "a/b", Name: "A"}},
			},
			wantErr: `projects[0].slug "a/b" contains reserved characters`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.yaml")
	data, err := os.ReadFile(filepath.Join("testdata", "portfolio.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store := NewStore(path, nil)
	assert.Nil(t, store.Document())

	var reloads int
	store.OnReload(func(*Document) { reloads++ })

	require.NoError(t, store.Reload(context.Background()))
	require.NotNil(t, store.Document())
	assert.Equal(t, "Ada Lovelace", store.Document().Personal.Name)
	assert.Equal(t, 1, reloads)

	// A broken edit keeps the last good document.
	require.NoError(t, os.WriteFile(path, []byte("personal: [unterminated"), 0o644))
	require.Error(t, store.Reload(context.Background()))
	assert.Equal(t, "Ada Lovelace", store.Document().Personal.Name)
	assert.Equal(t, 1, reloads)

	updated := []byte("personal:\n  name: Grace Hopper\n  email: grace@example.com\n")
	require.NoError(t, os.WriteFile(path, updated, 0o644))
	require.NoError(t, store.Reload(context.Background()))
	assert.Equal(t, "Grace Hopper", store.Document().Personal.Name)
	assert.Equal(t, 2, reloads)
}

func TestStaticStore(t *testing.T) {
	doc := &Document{Personal: Personal{Name: "Ada"}}
	store := NewStaticStore(doc)

	require.NoError(t, store.Reload(context.Background()))
	assert.Same(t, doc, store.Document())
}
