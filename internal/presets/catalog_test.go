package presets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadBuiltinsOnly(t *testing.T) {
	catalog, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if catalog.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", catalog.Len())
	}
	names := []string{"High", "Balanced", "Web", "Mobile"}
	for i, p := range catalog.List() {
		if p.Name != names[i] {
			t.Errorf("preset %d = %q, want %q", i, p.Name, names[i])
		}
	}
}

func TestDefaultPicksSecondEntry(t *testing.T) {
	catalog, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def, ok := catalog.Default()
	if !ok {
		t.Fatal("expected a default preset")
	}
	if def.Name != "Balanced" {
		t.Errorf("Default() = %q, want Balanced", def.Name)
	}
}

func TestDefaultSingleEntry(t *testing.T) {
	catalog := NewCatalog(Preset{Name: "Only", VideoCodec: "libx264", AudioCodec: "aac"})
	def, ok := catalog.Default()
	if !ok || def.Name != "Only" {
		t.Errorf("Default() = %q, %v, want the sole entry", def.Name, ok)
	}
}

func TestDefaultEmptyCatalog(t *testing.T) {
	catalog := NewCatalog()
	if _, ok := catalog.Default(); ok {
		t.Error("empty catalog must not report a default")
	}
}

func TestLoadOverlayAppendsAndOverrides(t *testing.T) {
	path := writeCatalog(t, `
presets:
  - name: Archive
    description: Slow but tiny.
    video_codec: libx265
    audio_codec: aac
    crf: 24
  - name: Web
    description: Custom web profile.
    video_codec: libx264
    audio_codec: aac
    bitrate: 4M
`)
	catalog, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if catalog.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", catalog.Len())
	}
	web, ok := catalog.Get("Web")
	if !ok {
		t.Fatal("missing Web preset")
	}
	if web.Bitrate != "4M" || web.FastStart {
		t.Errorf("Web override not applied: %+v", web)
	}
	if _, ok := catalog.Get("Archive"); !ok {
		t.Error("missing appended Archive preset")
	}
	// Override keeps the built-in position.
	if catalog.List()[2].Name != "Web" {
		t.Errorf("Web moved to position %d", 2)
	}
}

func TestLoadReplaceBuiltins(t *testing.T) {
	path := writeCatalog(t, `
replace_builtins: true
presets:
  - name: Solo
    video_codec: libx264
    audio_codec: aac
`)
	catalog, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if catalog.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", catalog.Len())
	}
}

func TestLoadReplaceBuiltinsEmpty(t *testing.T) {
	path := writeCatalog(t, "replace_builtins: true\n")
	catalog, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if catalog.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", catalog.Len())
	}
}

func TestLoadRejectsDuplicates(t *testing.T) {
	path := writeCatalog(t, `
presets:
  - name: Twin
    video_codec: libx264
    audio_codec: aac
  - name: Twin
    video_codec: libx265
    audio_codec: aac
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("Load = %v, want duplicate error", err)
	}
}

func TestLoadRejectsIncompletePreset(t *testing.T) {
	path := writeCatalog(t, `
presets:
  - name: NoVideo
    audio_codec: aac
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestFFmpegArgs(t *testing.T) {
	tests := []struct {
		name   string
		preset string
		want   []string
	}{
		{
			name:   "high is crf only",
			preset: "High",
			want:   []string{"-c:v", "libx264", "-c:a", "aac", "-crf", "18", "-preset", "medium"},
		},
		{
			name:   "web adds bitrate and faststart",
			preset: "Web",
			want:   []string{"-c:v", "libx264", "-c:a", "aac", "-crf", "28", "-b:v", "2M", "-movflags", "+faststart", "-preset", "medium"},
		},
		{
			name:   "mobile adds scale",
			preset: "Mobile",
			want:   []string{"-c:v", "libx264", "-c:a", "aac", "-crf", "30", "-b:v", "1M", "-vf", "scale=720:-1", "-preset", "medium"},
		},
	}

	catalog, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, ok := catalog.Get(tt.preset)
			if !ok {
				t.Fatalf("missing preset %q", tt.preset)
			}
			got := preset.FFmpegArgs()
			if len(got) != len(tt.want) {
				t.Fatalf("FFmpegArgs() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCloneDetachesCRF(t *testing.T) {
	original := Preset{Name: "X", VideoCodec: "libx264", AudioCodec: "aac", CRF: crf(20)}
	copied := original.Clone()
	*copied.CRF = 5
	if *original.CRF != 20 {
		t.Errorf("Clone shares CRF storage: original changed to %d", *original.CRF)
	}
}
