// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/soyoung-yu/paper-site/pkg/types"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Skin & Hair Care (Oral)", "Skin_and_Hair_Care_Oral"},
		{"  Already_Slug ", "Already_Slug"},
		{"Poster--Session  3", "Poster_Session_3"},
		{"Séance", "S_ance"},
		{"&", "and"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveID(t *testing.T) {
	if got := DeriveID("Skin Care", "Paper 1.pdf", 0); got != "Skin_Care-Paper_1" {
		t.Errorf("DeriveID = %q", got)
	}
	if got := DeriveID("Hair", "", 4); got != "Hair-5" {
		t.Errorf("DeriveID without filename = %q", got)
	}
}

func TestNormalizeFolders(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"Skin & Hair", "Hair", "Oral Care", "Oral_Care"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "Skin & Hair", "a.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cat := types.Catalog{{Folder: "Skin & Hair"}, {Folder: "Hair"}}
	var buf bytes.Buffer
	sum, err := NormalizeFolders(root, cat, &buf)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Renamed != 1 || sum.Unchanged != 2 || sum.Conflicts != 1 || sum.Slugs != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if !sum.HasFailures() {
		t.Error("HasFailures() = false with a conflict")
	}
	if _, err := os.Stat(filepath.Join(root, "Skin_and_Hair", "a.pdf")); err != nil {
		t.Errorf("renamed folder missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Oral Care")); err != nil {
		t.Errorf("conflicting folder should stay: %v", err)
	}
	if cat[0].Folder != "Skin_and_Hair" || cat[1].Folder != "Hair" {
		t.Errorf("catalog slugs = %q, %q", cat[0].Folder, cat[1].Folder)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`renamed: "Skin & Hair" -> "Skin_and_Hair"`)) {
		t.Errorf("output missing rename line:\n%s", buf.String())
	}
}

func TestNormalizeFoldersMissingRoot(t *testing.T) {
	_, err := NormalizeFolders(filepath.Join(t.TempDir(), "absent"), nil, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error")
	}
}
