package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSheet = `Question,Hint,Answer,Category
Name the film,Mogambo khush hua,Mr. India,Movies
Name the song,Chaiyya chaiyya on a train,Chaiyya Chaiyya,Songs
Broken row,only two
Who said it,Pushpa I hate tears,Rajesh Khanna,Dialogues
`

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newCmd(&Config{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSheet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.csv")
	if err := os.WriteFile(path, []byte(testSheet), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckFile(t *testing.T) {
	out, err := runCmd(t, "--file", writeSheet(t), "--limit", "0")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, want := range []string{
		"accepted 3, skipped 1",
		"line 4: expected 4 columns, got 2",
		"categories: Dialogues, Movies, Songs",
		"sample of 3:",
		"answer: Mr. India",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckCategoryFilter(t *testing.T) {
	out, err := runCmd(t, "-f", writeSheet(t), "-c", "Songs")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "sample of 1:") || !strings.Contains(out, "[Songs]") {
		t.Errorf("output:\n%s", out)
	}

	if _, err := runCmd(t, "-f", writeSheet(t), "-c", "Actors"); err == nil {
		t.Error("expected error for a category with no questions")
	}
}

func TestCheckURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(testSheet))
	}))
	defer srv.Close()

	out, err := runCmd(t, "--url", srv.URL, "--limit", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "accepted 3") || !strings.Contains(out, "sample of 2:") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "skipping sheet row") {
		t.Errorf("skipped row not logged:\n%s", out)
	}
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("SHEETCHECK_FILE", writeSheet(t))
	t.Setenv("SHEETCHECK_LIMIT", "1")

	out, err := runCmd(t)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "sample of 1:") {
		t.Errorf("output:\n%s", out)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"file", Config{file: "a.csv"}, true},
		{"url", Config{url: "http://x"}, true},
		{"neither", Config{}, false},
		{"both", Config{file: "a.csv", url: "http://x"}, false},
		{"negative limit", Config{file: "a.csv", limit: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.validate(); (err == nil) != tt.ok {
				t.Errorf("validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
