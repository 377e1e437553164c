package models

// Subject is the study area a goal or session belongs to.
// Aggregation treats it as an opaque string; the fixed set below only
// matters for input validation.
type Subject string

const (
	SubjectMaths         Subject = "Maths"
	SubjectScience       Subject = "Science"
	SubjectSocialScience Subject = "Social-Science"
	SubjectEnglish       Subject = "English"
	SubjectHindi         Subject = "Hindi"
	SubjectIT            Subject = "IT"
	SubjectOther         Subject = "Other"
)

var Subjects = []Subject{
	SubjectMaths, SubjectScience, SubjectSocialScience,
	SubjectEnglish, SubjectHindi, SubjectIT, SubjectOther,
}

func (s Subject) IsValid() bool {
	for _, v := range Subjects {
		if s == v {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities for display: High first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}
