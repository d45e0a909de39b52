package emailtemplates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveTemplate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := ResolveTemplate("t", " ", nil); err == nil {
			t.Error("should produce error")
		}
	})

	t.Run("parse error", func(t *testing.T) {
		if _, err := ResolveTemplate("t", "{{.Name", nil); err == nil {
			t.Error("should produce error")
		}
	})

	t.Run("escapes values", func(t *testing.T) {
		content, err := ResolveTemplate("t", "<p>{{.Name}}</p>", map[string]string{"Name": "<script>"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content != "<p>&lt;script&gt;</p>" {
			t.Errorf("unexpected content: %s", content)
		}
	})
}

func TestLoadTemplate(t *testing.T) {
	t.Run("built-in", func(t *testing.T) {
		def, err := LoadTemplate(TEMPLATE_PEER_REVIEW_RECEIVED, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := ResolveTemplate("t", def, map[string]any{
			"ProjectID":  "p1",
			"Anonymous":  true,
			"AuthorType": "student",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(content, "p1") || !strings.Contains(content, "anonymous") {
			t.Errorf("unexpected content: %s", content)
		}
	})

	t.Run("unknown built-in", func(t *testing.T) {
		if _, err := LoadTemplate("other", ""); err == nil {
			t.Error("should produce error")
		}
	})

	t.Run("from file", func(t *testing.T) {
		fname := filepath.Join(t.TempDir(), "tpl.html")
		if err := os.WriteFile(fname, []byte("<p>{{.ProjectID}}</p>"), 0o600); err != nil {
			t.Fatal(err)
		}
		def, err := LoadTemplate(TEMPLATE_PEER_REVIEW_RECEIVED, fname)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if def != "<p>{{.ProjectID}}</p>" {
			t.Errorf("unexpected definition: %s", def)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		fname := filepath.Join(t.TempDir(), "tpl.html")
		if err := os.WriteFile(fname, []byte("{{.ProjectID"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTemplate(TEMPLATE_PEER_REVIEW_RECEIVED, fname); err == nil {
			t.Error("should produce error")
		}
	})
}
