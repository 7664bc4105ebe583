package agent

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openchamber-ai/openchamber/internal/config"
	"github.com/openchamber-ai/openchamber/internal/document"
)

func tempService(t *testing.T) (*Service, *config.Paths) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "openchamber-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	paths := config.NewPaths(tmpDir)
	return NewService(paths), paths
}

func readConfig(t *testing.T, paths *config.Paths) map[string]any {
	t.Helper()

	data, err := os.ReadFile(paths.File())
	require.NoError(t, err)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal(data, &cfg))
	return cfg
}

func TestCreateThenSources(t *testing.T) {
	svc, paths := tempService(t)

	err := svc.Create("researcher", map[string]any{
		"model":  "m1",
		"prompt": "You are a researcher",
	})
	require.NoError(t, err)

	doc, err := document.Read(paths.AgentPath("researcher"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"model": "m1"}, doc.Frontmatter)
	assert.Equal(t, "You are a researcher", doc.Body)

	sources, err := svc.Sources("researcher")
	require.NoError(t, err)
	assert.True(t, sources.MD.Exists)
	assert.Equal(t, paths.AgentPath("researcher"), sources.MD.Path)
	assert.ElementsMatch(t, []string{"model", "prompt"}, sources.MD.Fields)
	assert.False(t, sources.JSON.Exists)
	assert.Empty(t, sources.JSON.Fields)
}

func TestCreateExistingDocument(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("researcher", map[string]any{"model": "m1"}))
	before, err := os.ReadFile(paths.AgentPath("researcher"))
	require.NoError(t, err)

	err = svc.Create("researcher", map[string]any{"model": "m2"})
	require.ErrorIs(t, err, ErrExists)

	// Failure leaves on-disk content unchanged.
	after, err := os.ReadFile(paths.AgentPath("researcher"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestCreateExistingConfigSection(t *testing.T) {
	svc, paths := tempService(t)

	store := config.NewStore(paths)
	require.NoError(t, store.Write(map[string]any{
		"agent": map[string]any{"researcher": map[string]any{"model": "m1"}},
	}))

	err := svc.Create("researcher", map[string]any{"model": "m2"})
	require.ErrorIs(t, err, ErrExists)

	_, statErr := os.Stat(paths.AgentPath("researcher"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpdateDocumentField(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("researcher", map[string]any{
		"model":  "m1",
		"prompt": "You are a researcher",
	}))

	require.NoError(t, svc.Update("researcher", map[string]any{"model": "m2"}))

	doc, err := document.Read(paths.AgentPath("researcher"))
	require.NoError(t, err)
	assert.Equal(t, "m2", doc.Frontmatter["model"])
	assert.Equal(t, "You are a researcher", doc.Body)

	// No config section appears for a document-only agent.
	sources, err := svc.Sources("researcher")
	require.NoError(t, err)
	assert.False(t, sources.JSON.Exists)
}

func TestUpdatePromptRewritesBody(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("researcher", map[string]any{
		"model":  "m1",
		"prompt": "old prompt",
	}))

	require.NoError(t, svc.Update("researcher", map[string]any{"prompt": "new prompt"}))

	doc, err := document.Read(paths.AgentPath("researcher"))
	require.NoError(t, err)
	assert.Equal(t, "new prompt", doc.Body)
	assert.Equal(t, "m1", doc.Frontmatter["model"])
}

func TestUpdateConfigSectionField(t *testing.T) {
	svc, paths := tempService(t)

	store := config.NewStore(paths)
	require.NoError(t, store.Write(map[string]any{
		"agent": map[string]any{"researcher": map[string]any{"model": "m1", "temperature": 0.5}},
	}))

	require.NoError(t, svc.Update("researcher", map[string]any{"model": "m2"}))

	cfg := readConfig(t, paths)
	entry := config.Entry(cfg, "agent", "researcher")
	assert.Equal(t, "m2", entry["model"])
	assert.Equal(t, 0.5, entry["temperature"])
}

func TestUpdateCreatesSectionForUnknownAgent(t *testing.T) {
	svc, paths := tempService(t)

	// No document, no section: updating a built-in lands in the config file.
	require.NoError(t, svc.Update("build", map[string]any{"model": "m9"}))

	cfg := readConfig(t, paths)
	assert.Equal(t, "m9", config.Entry(cfg, "agent", "build")["model"])
}

func TestUpdatePromptThroughFileReference(t *testing.T) {
	svc, paths := tempService(t)

	store := config.NewStore(paths)
	require.NoError(t, store.Write(map[string]any{
		"agent": map[string]any{
			"researcher": map[string]any{"prompt": "{file:./prompts/researcher.txt}"},
		},
	}))

	require.NoError(t, svc.Update("researcher", map[string]any{"prompt": "updated content"}))

	data, err := os.ReadFile(filepath.Join(paths.Root, "prompts", "researcher.txt"))
	require.NoError(t, err)
	assert.Equal(t, "updated content", string(data))

	// The reference itself stays in place.
	cfg := readConfig(t, paths)
	assert.Equal(t, "{file:./prompts/researcher.txt}", config.Entry(cfg, "agent", "researcher")["prompt"])
}

func TestUpdatePromptDocumentWinsOverReference(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("researcher", map[string]any{
		"model":  "m1",
		"prompt": "old prompt",
	}))
	store := config.NewStore(paths)
	require.NoError(t, store.Write(map[string]any{
		"agent": map[string]any{
			"researcher": map[string]any{"prompt": "{file:./prompts/researcher.txt}"},
		},
	}))

	require.NoError(t, svc.Update("researcher", map[string]any{"prompt": "new prompt"}))

	// The document body wins; the reference is never followed.
	doc, err := document.Read(paths.AgentPath("researcher"))
	require.NoError(t, err)
	assert.Equal(t, "new prompt", doc.Body)

	_, err = os.Stat(filepath.Join(paths.Root, "prompts", "researcher.txt"))
	assert.True(t, os.IsNotExist(err))

	cfg := readConfig(t, paths)
	assert.Equal(t, "{file:./prompts/researcher.txt}", config.Entry(cfg, "agent", "researcher")["prompt"])
}

func TestUpdateKeepsDocumentChangeWhenConfigWriteFails(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("researcher", map[string]any{"model": "m1"}))
	store := config.NewStore(paths)
	require.NoError(t, store.Write(map[string]any{
		"agent": map[string]any{"researcher": map[string]any{"temperature": 0.5}},
	}))

	// NaN cannot be encoded as JSON, so the config write fails after the
	// document write has already committed.
	err := svc.Update("researcher", map[string]any{
		"model":       "m2",
		"temperature": math.NaN(),
	})
	require.Error(t, err)

	doc, err := document.Read(paths.AgentPath("researcher"))
	require.NoError(t, err)
	assert.Equal(t, "m2", doc.Frontmatter["model"])

	cfg := readConfig(t, paths)
	assert.Equal(t, 0.5, config.Entry(cfg, "agent", "researcher")["temperature"])
}

func TestUpdateNilRemovesField(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("researcher", map[string]any{
		"model":       "m1",
		"temperature": 0.7,
		"prompt":      "p",
	}))

	require.NoError(t, svc.Update("researcher", map[string]any{"temperature": nil}))

	doc, err := document.Read(paths.AgentPath("researcher"))
	require.NoError(t, err)
	_, ok := doc.Frontmatter["temperature"]
	assert.False(t, ok)
	assert.Equal(t, "m1", doc.Frontmatter["model"])
}

func TestUpdateNewFieldPrefersSectionWhenBothExist(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("researcher", map[string]any{"model": "m1"}))
	store := config.NewStore(paths)
	require.NoError(t, store.Write(map[string]any{
		"agent": map[string]any{"researcher": map[string]any{"temperature": 0.5}},
	}))

	require.NoError(t, svc.Update("researcher", map[string]any{"color": "blue"}))

	cfg := readConfig(t, paths)
	assert.Equal(t, "blue", config.Entry(cfg, "agent", "researcher")["color"])

	doc, err := document.Read(paths.AgentPath("researcher"))
	require.NoError(t, err)
	_, ok := doc.Frontmatter["color"]
	assert.False(t, ok)
}

func TestDeleteDocumentAndSection(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("researcher", map[string]any{"model": "m1"}))
	store := config.NewStore(paths)
	require.NoError(t, store.Write(map[string]any{
		"agent": map[string]any{"researcher": map[string]any{"temperature": 0.5}},
	}))

	require.NoError(t, svc.Delete("researcher"))

	_, err := os.Stat(paths.AgentPath("researcher"))
	assert.True(t, os.IsNotExist(err))

	cfg := readConfig(t, paths)
	_, ok := config.Section(cfg, "agent")["researcher"]
	assert.False(t, ok)
}

func TestDeleteUnknownDisables(t *testing.T) {
	svc, paths := tempService(t)

	// No document and no section: delete never fails, it disables.
	require.NoError(t, svc.Delete("ghost"))

	cfg := readConfig(t, paths)
	entry := config.Entry(cfg, "agent", "ghost")
	require.NotNil(t, entry)
	assert.Equal(t, true, entry["disable"])

	sources, err := svc.Sources("ghost")
	require.NoError(t, err)
	assert.False(t, sources.MD.Exists)
	assert.True(t, sources.JSON.Exists)
	assert.Equal(t, []string{"disable"}, sources.JSON.Fields)
}

func TestList(t *testing.T) {
	svc, paths := tempService(t)

	require.NoError(t, svc.Create("alpha", map[string]any{"model": "m1"}))
	store := config.NewStore(paths)
	require.NoError(t, store.Write(map[string]any{
		"agent": map[string]any{
			"alpha": map[string]any{"temperature": 0.5},
			"beta":  map[string]any{"model": "m2"},
		},
	}))

	defs, err := svc.List()
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, Definition{Name: "alpha", Document: true, Section: true}, defs[0])
	assert.Equal(t, Definition{Name: "beta", Section: true}, defs[1])
}
