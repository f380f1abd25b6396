package templates

import "time"

// Known section ids a template may declare.
const (
	SectionPersonal       = "personal"
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionAchievements   = "achievements"
	SectionPositions      = "positions"
)

// KnownSections lists section ids in display order.
var KnownSections = []string{
	SectionPersonal,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionAchievements,
	SectionPositions,
}

// Template is a named LaTeX skeleton.
type Template struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DefaultLatex string    `json:"defaultLatex"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	IsPublic     bool      `json:"isPublic"`
	Sections     []string  `json:"sections"`
	CreatedAt    time.Time `json:"createdAt"`
}
