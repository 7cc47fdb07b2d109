package paper

// Script identifies the writing system of an author name.
type Script string

const (
	ScriptLatin Script = "latin"
	ScriptCJK   Script = "cjk"
	ScriptMixed Script = "mixed"
)

// Author represents a single parsed author name.
//
// The Surname/Given split is only meaningful for Latin-script names. CJK
// names are rendered from Raw as a unit: a bare single-character Chinese
// surname is not a useful label, so FullNameRequired is always set for them.
type Author struct {
	Raw              string `json:"raw"`
	Script           Script `json:"script"`
	Surname          string `json:"surname"`
	Given            string `json:"given,omitempty"`
	Suffix           string `json:"suffix,omitempty"` // Jr., III, etc.
	FullNameRequired bool   `json:"full_name_required,omitempty"`
}

// DisplaySurname returns the string to use where a surname is wanted.
// CJK and mixed-script names fall back to the full raw name.
func (a Author) DisplaySurname() string {
	if a.FullNameRequired || a.Surname == "" {
		return a.Raw
	}
	if a.Suffix != "" {
		return a.Surname + " " + a.Suffix
	}
	return a.Surname
}

// FullName returns the complete renderable name.
func (a Author) FullName() string {
	return a.Raw
}
