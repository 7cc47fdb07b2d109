package filename

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"colon", "Attention: Is All You Need", "Attention： Is All You Need"},
		{"slash", "TCP/IP Illustrated", "TCP⁄IP Illustrated"},
		{"question", "What Now?", "What Now？"},
		{"quotes and pipes", `"A" | "B"`, "＂A＂ ｜ ＂B＂"},
		{"whitespace collapse", "  a \t b\n c  ", "a b c"},
		{"cjk untouched", "基于深度学习的研究", "基于深度学习的研究"},
		{"clean passthrough", "Plain Title", "Plain Title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"Attention: Is All You Need?",
		`a/b\c|d<e>f*g"h`,
		"张三: 论文？",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestBuild(t *testing.T) {
	b := Builder{}
	tests := []struct {
		name    string
		authors string
		year    int
		title   string
		want    string
	}{
		{"complete", "Wang et al.", 2023, "Deep Learning", "Wang et al. (2023) - Deep Learning.pdf"},
		{"no year", "Smith", 0, "A Title", "Smith (n.d.) - A Title.pdf"},
		{"no authors", "", 2020, "A Title", "Unknown (2020) - A Title.pdf"},
		{"no title", "Smith", 2020, "", "Smith (2020) - Untitled.pdf"},
		{"nothing", "", 0, "", "Unknown (n.d.) - Untitled.pdf"},
		{"invalid chars", "Smith", 2021, "Q: What?", "Smith (2021) - Q： What？.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Build(tt.authors, tt.year, tt.title, ".pdf")
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildTruncatesTitleFirst(t *testing.T) {
	b := Builder{MaxLength: 60}
	got := b.Build("Wang et al.", 2023, strings.Repeat("Long Title ", 20), ".pdf")

	if n := len([]rune(got)); n > 60 {
		t.Errorf("name is %d runes, want <= 60: %q", n, got)
	}
	if !strings.HasPrefix(got, "Wang et al. (2023) - ") {
		t.Errorf("authors and year must survive truncation: %q", got)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("extension must survive truncation: %q", got)
	}
}

func TestBuildTruncatesOnRuneBoundary(t *testing.T) {
	b := Builder{MaxLength: 40}
	got := b.Build("张三", 2023, strings.Repeat("深度学习研究", 30), ".pdf")
	if n := len([]rune(got)); n > 40 {
		t.Errorf("name is %d runes, want <= 40", n)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("extension lost: %q", got)
	}
	for _, r := range got {
		if r == '�' {
			t.Fatalf("mangled rune in %q", got)
		}
	}
}

func TestClaimerFreeName(t *testing.T) {
	dir := t.TempDir()
	c := NewClaimer()

	got, err := c.Claim(dir, "Wang (2023) - Title.pdf", filepath.Join(dir, "orig.pdf"))
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if got != "Wang (2023) - Title.pdf" {
		t.Errorf("Claim() = %q", got)
	}
}

func TestClaimerSuffixOnDiskCollision(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "Wang et al. (2023) - Title.pdf")
	if err := os.WriteFile(existing, nil, 0644); err != nil {
		t.Fatal(err)
	}

	c := NewClaimer()
	got, err := c.Claim(dir, "Wang et al. (2023) - Title.pdf", filepath.Join(dir, "orig.pdf"))
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if got != "Wang et al. (2023) - Title (1).pdf" {
		t.Errorf("Claim() = %q, want suffix (1)", got)
	}
}

func TestClaimerInProcessCollision(t *testing.T) {
	dir := t.TempDir()
	c := NewClaimer()

	first, err := c.Claim(dir, "Same (2023) - Name.pdf", filepath.Join(dir, "a.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Claim(dir, "Same (2023) - Name.pdf", filepath.Join(dir, "b.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("two claims resolved to the same name %q", first)
	}
	if second != "Same (2023) - Name (1).pdf" {
		t.Errorf("second claim = %q", second)
	}
}

func TestClaimerSourceIsNotACollision(t *testing.T) {
	dir := t.TempDir()
	name := "Already (2023) - Correct.pdf"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	c := NewClaimer()
	got, err := c.Claim(dir, name, path)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if got != name {
		t.Errorf("Claim() = %q, want unchanged %q", got, name)
	}
}

func TestClaimerRelease(t *testing.T) {
	dir := t.TempDir()
	c := NewClaimer()

	name, err := c.Claim(dir, "X (2023) - Y.pdf", filepath.Join(dir, "a.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	c.Release(dir, name)

	again, err := c.Claim(dir, "X (2023) - Y.pdf", filepath.Join(dir, "b.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if again != name {
		t.Errorf("released name not reusable: got %q, want %q", again, name)
	}
}

func TestClaimerExhaustion(t *testing.T) {
	dir := t.TempDir()
	c := NewClaimer()
	// Claim the base name and every suffixed variant in-process.
	base := filepath.Join(dir, "N (2023) - T.pdf")
	c.claims[filepath.Clean(base)] = true
	for n := 1; n <= maxSuffix; n++ {
		taken := fmt.Sprintf("N (2023) - T (%d).pdf", n)
		c.claims[filepath.Clean(filepath.Join(dir, taken))] = true
	}

	_, err := c.Claim(dir, "N (2023) - T.pdf", filepath.Join(dir, "src.pdf"))
	if !errors.Is(err, ErrCollisionUnresolved) {
		t.Errorf("err = %v, want ErrCollisionUnresolved", err)
	}
}
