package resumes

import "time"

// Resume is a saved resume owned by a user.
type Resume struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	TemplateID string    `json:"templateId"`
	Title      string    `json:"title"`
	LatexCode  string    `json:"latexCode"`
	PDFKey     string    `json:"-"`
	PageCount  int       `json:"pageCount"`
	IsCustom   bool      `json:"isCustom"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasPDF reports whether a rendered PDF was stored with the resume.
func (r Resume) HasPDF() bool { return r.PDFKey != "" }
