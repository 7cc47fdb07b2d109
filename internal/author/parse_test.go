package author

import (
	"testing"

	"github.com/matsen/pdfcite/internal/paper"
)

func TestParse_LatinNames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		surnames []string
	}{
		{"comma separated", "Weihao Wang, Rufeng Zhang, Mingyu You", []string{"Wang", "Zhang", "You"}},
		{"and separated", "John Smith and Jane Doe", []string{"Smith", "Doe"}},
		{"ampersand", "John Smith & Jane Doe", []string{"Smith", "Doe"}},
		{"footnote markers", "Weihao Wang*, Rufeng Zhang†", []string{"Wang", "Zhang"}},
		{"superscript digits", "Weihao Wang¹, Rufeng Zhang²", []string{"Wang", "Zhang"}},
		{"initials", "T.C. Hales, A.J.S. Hammersley", []string{"Hales", "Hammersley"}},
		{"newline separated", "John Smith\nJane Doe", []string{"Smith", "Doe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if len(got) != len(tt.surnames) {
				t.Fatalf("Parse(%q) returned %d authors, want %d: %+v", tt.input, len(got), len(tt.surnames), got)
			}
			for i, want := range tt.surnames {
				if got[i].Surname != want {
					t.Errorf("author %d surname = %q, want %q", i, got[i].Surname, want)
				}
				if got[i].Script != paper.ScriptLatin {
					t.Errorf("author %d script = %v, want latin", i, got[i].Script)
				}
			}
		})
	}
}

func TestParse_GivenName(t *testing.T) {
	got := Parse("Weihao Wang")
	if len(got) != 1 {
		t.Fatalf("Parse returned %d authors, want 1", len(got))
	}
	if got[0].Given != "Weihao" || got[0].Surname != "Wang" {
		t.Errorf("Parse = given %q surname %q, want Weihao/Wang", got[0].Given, got[0].Surname)
	}
	if got[0].Raw != "Weihao Wang" {
		t.Errorf("Raw = %q, want Weihao Wang", got[0].Raw)
	}
}

func TestParse_Suffix(t *testing.T) {
	got := Parse("Martin Luther King Jr.")
	if len(got) != 1 {
		t.Fatalf("Parse returned %d authors, want 1", len(got))
	}
	if got[0].Surname != "King" {
		t.Errorf("Surname = %q, want King (suffix excluded)", got[0].Surname)
	}
	if got[0].Suffix != "Jr." {
		t.Errorf("Suffix = %q, want Jr.", got[0].Suffix)
	}
}

func TestParse_CJKNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"enumeration comma", "张三、李四", []string{"张三", "李四"}},
		{"full-width comma", "张三，李四", []string{"张三", "李四"}},
		{"space separated", "张三 李四", []string{"张三", "李四"}},
		{"single name", "欧阳修", []string{"欧阳修"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Parse(%q) returned %d authors, want %d: %+v", tt.input, len(got), len(tt.want), got)
			}
			for i, want := range tt.want {
				if got[i].Raw != want {
					t.Errorf("author %d raw = %q, want %q", i, got[i].Raw, want)
				}
				if !got[i].FullNameRequired {
					t.Errorf("author %d: CJK names must require the full name", i)
				}
			}
		})
	}
}

func TestParse_MixedScript(t *testing.T) {
	got := Parse("David 王伟")
	if len(got) != 1 {
		t.Fatalf("Parse returned %d authors, want 1: %+v", len(got), got)
	}
	if got[0].Script != paper.ScriptMixed {
		t.Errorf("Script = %v, want mixed", got[0].Script)
	}
	if !got[0].FullNameRequired {
		t.Error("mixed-script names must require the full name")
	}
}

func TestParse_ParentheticalAffiliation(t *testing.T) {
	got := Parse("John Smith (MIT, Cambridge), Jane Doe")
	if len(got) != 2 {
		t.Fatalf("Parse returned %d authors, want 2: %+v", len(got), got)
	}
	if got[0].Surname != "Smith" || got[1].Surname != "Doe" {
		t.Errorf("surnames = %q, %q; want Smith, Doe", got[0].Surname, got[1].Surname)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "***", "123, 456"} {
		if got := Parse(input); len(got) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty", input, got)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  paper.Script
	}{
		{"Weihao Wang", paper.ScriptLatin},
		{"张三", paper.ScriptCJK},
		{"David 王伟", paper.ScriptMixed},
	}
	for _, tt := range tests {
		if got := Classify(tt.input); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
