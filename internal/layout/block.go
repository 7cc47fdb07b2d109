// Package layout detects title and author-line candidates from first-page
// text geometry.
package layout

// TextBlock is one line of positioned text. Blocks come from the PDF text
// layer or are synthesized from OCR bounding boxes, in which case the box
// height stands in for the font size. Y is measured from the page top.
type TextBlock struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Page     int     `json:"page"`
}

// Density returns the total number of text characters across blocks. It is
// the signal for the OCR-needed decision.
func Density(blocks []TextBlock) int {
	n := 0
	for _, b := range blocks {
		for _, r := range b.Text {
			if r != ' ' && r != '\n' && r != '\t' {
				n++
			}
		}
	}
	return n
}

// JoinText concatenates block text in order, newline separated.
func JoinText(blocks []TextBlock) string {
	var out []byte
	for i, b := range blocks {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, b.Text...)
	}
	return string(out)
}
