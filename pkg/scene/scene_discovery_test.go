package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"red-spheres", "Red Spheres"},
		{"glass_pyramid", "Glass Pyramid"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func writeSceneFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene file: %v", err)
	}
	return path
}

func TestParseSceneMetadata(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name:    "complete_metadata.json",
			content: `{"name": "Two Spheres", "variant": "Dusk", "description": "Two spheres at dusk", "group": "Spheres", "primitives": []}`,
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Two Spheres",
				DisplayName: "Two Spheres - Dusk",
				Description: "Two spheres at dusk",
				Group:       "Spheres",
				Type:        "file",
				Variant:     "Dusk",
			},
		},
		{
			name:    "partial_metadata.json",
			content: `{"name": "Dragon", "description": "Dragon mesh scene"}`,
			expected: SceneInfo{
				ID:          "file:partial_metadata",
				Name:        "Dragon",
				DisplayName: "Dragon",
				Description: "Dragon mesh scene",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
		{
			name:    "no_metadata.json",
			content: `{"lights": []}`,
			expected: SceneInfo{
				ID:          "file:no_metadata",
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, dir, tc.name, tc.content)

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_Errors(t *testing.T) {
	if _, err := ParseSceneMetadata(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeSceneFile(t, t.TempDir(), "broken.json", `{"name": `)
	info, err := ParseSceneMetadata(path)
	if err == nil {
		t.Error("Expected error for malformed JSON")
	}
	if info.ID != "file:broken" {
		t.Errorf("Expected fallback ID even on error, got %q", info.ID)
	}
}

func TestListFileScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "b-scene.json", `{"name": "Beta"}`)
	writeSceneFile(t, dir, "a-scene.json", `{"name": "Alpha"}`)
	writeSceneFile(t, dir, "broken.json", `not json`)
	writeSceneFile(t, dir, "notes.txt", `ignored`)

	scenes, err := ListFileScenes(dir)
	if err != nil {
		t.Fatalf("ListFileScenes() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].Name != "Alpha" || scenes[1].Name != "Beta" {
		t.Errorf("Expected scenes sorted by display name, got %q, %q", scenes[0].Name, scenes[1].Name)
	}
}

func TestListFileScenes_MissingDirectory(t *testing.T) {
	scenes, err := ListFileScenes(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Errorf("ListFileScenes() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty slice, got %v", scenes)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "custom.json", `{"name": "Custom", "group": "Experiments"}`)

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}
	if response.Groups[0].Name != "Built-in Scenes" {
		t.Errorf("Expected built-in group first, got %q", response.Groups[0].Name)
	}

	expectedScenes := []string{"default", "sphere", "pyramid", "empty"}
	if len(response.Groups[0].Scenes) != len(expectedScenes) {
		t.Errorf("Built-in scenes count = %d, want %d", len(response.Groups[0].Scenes), len(expectedScenes))
	}
	for i, id := range expectedScenes {
		if response.Groups[0].Scenes[i].ID != id {
			t.Errorf("Built-in scene %d = %q, want %q", i, response.Groups[0].Scenes[i].ID, id)
		}
	}

	for _, scene := range response.Groups[1].Scenes {
		if !strings.HasPrefix(scene.ID, FileScenePrefix) || scene.FilePath == "" {
			t.Errorf("File scene missing prefix or path: %+v", scene)
		}
	}
}
