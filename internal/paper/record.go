// Package paper defines the core domain types for extracted paper metadata.
package paper

// Processing stages, in pipeline order.
const (
	StageOpen        = "open"
	StageTextExtract = "text_extract"
	StageOCR         = "ocr"
	StageLayout      = "layout"
	StageYear        = "year"
	StageAuthors     = "authors"
	StageFilename    = "filename"
	StageRename      = "rename"
)

// Document-local error kinds.
const (
	KindExtractionFailure   = "extraction_failure"
	KindAmbiguousTitle      = "ambiguous_title"
	KindYearNotFound        = "year_not_found"
	KindAuthorParseFailure  = "author_parse_failure"
	KindCollisionUnresolved = "filename_collision_unresolved"
	KindRenameFailed        = "rename_failed"
)

// Record statuses.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorEntry records a document-local failure at a pipeline stage.
type ErrorEntry struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Record tracks one source document through the pipeline. It is created when
// processing starts, mutated by each stage, and final once the coordinator
// completes the document. Records are never shared across documents.
type Record struct {
	SourcePath  string       `json:"source_path"`
	Title       string       `json:"title,omitempty"`
	Authors     []Author     `json:"authors,omitempty"`
	Year        int          `json:"year,omitempty"`
	Confidence  int          `json:"confidence"`
	UsedOCR     bool         `json:"used_ocr"`
	OCRBackend  string       `json:"ocr_backend,omitempty"`
	NewFilename string       `json:"new_filename,omitempty"`
	Status      string       `json:"status"`
	Errors      []ErrorEntry `json:"errors,omitempty"`
}

// AddError appends a stage failure. The errors list is append-only; a
// non-empty list does not by itself invalidate partial results.
func (r *Record) AddError(stage, kind, message string) {
	r.Errors = append(r.Errors, ErrorEntry{Stage: stage, Kind: kind, Message: message})
}

// HasError reports whether an error of the given kind was recorded.
func (r *Record) HasError(kind string) bool {
	for _, e := range r.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Valid reports whether the record carries a complete extraction.
func (r *Record) Valid() bool {
	return r.Title != "" && len(r.Authors) > 0 && r.Year != 0
}
