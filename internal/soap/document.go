// Package soap maps the free-form clinical note string produced by the
// backend onto its six named sections and back. The raw note string stays the
// authoritative store; sections are re-derived by Parse on every read and
// re-assembled by Serialize on every write.
package soap

import (
	"regexp"
	"strings"
)

// Section identifies one of the six fixed note sections.
type Section string

const (
	SectionSubjective Section = "subjective"
	SectionObjective  Section = "objective"
	SectionAssessment Section = "assessment"
	SectionPlan       Section = "plan"
	SectionDiagnosis  Section = "diagnosis"
	SectionICD10      Section = "icd10"
)

// SectionOrder is the fixed serialization order of the note.
var SectionOrder = []Section{
	SectionSubjective,
	SectionObjective,
	SectionAssessment,
	SectionPlan,
	SectionDiagnosis,
	SectionICD10,
}

// Sections holds the free-form text of each note section.
type Sections struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
	Diagnosis  string `json:"diagnosis"`
	ICD10      string `json:"icd10"`
}

// Get returns the text of one section. Unknown keys return "".
func (s Sections) Get(section Section) string {
	switch section {
	case SectionSubjective:
		return s.Subjective
	case SectionObjective:
		return s.Objective
	case SectionAssessment:
		return s.Assessment
	case SectionPlan:
		return s.Plan
	case SectionDiagnosis:
		return s.Diagnosis
	case SectionICD10:
		return s.ICD10
	}
	return ""
}

func (s *Sections) set(section Section, value string) {
	switch section {
	case SectionSubjective:
		s.Subjective = value
	case SectionObjective:
		s.Objective = value
	case SectionAssessment:
		s.Assessment = value
	case SectionPlan:
		s.Plan = value
	case SectionDiagnosis:
		s.Diagnosis = value
	case SectionICD10:
		s.ICD10 = value
	}
}

// SectionFromKey maps an external key (JSON field name) to a Section.
func SectionFromKey(key string) (Section, bool) {
	switch Section(strings.ToLower(strings.TrimSpace(key))) {
	case SectionSubjective:
		return SectionSubjective, true
	case SectionObjective:
		return SectionObjective, true
	case SectionAssessment:
		return SectionAssessment, true
	case SectionPlan:
		return SectionPlan, true
	case SectionDiagnosis:
		return SectionDiagnosis, true
	case SectionICD10:
		return SectionICD10, true
	}
	return "", false
}

// headerSplit marks every position where a recognized section header begins.
// The note is cut at those positions so each header stays attached to the
// text that follows it.
var headerSplit = regexp.MustCompile(`(?i)SUBJECTIVE|OBJECTIVE|ASSESSMENT|PLAN|DIAGNOSIS|ICD-10`)

type headerRule struct {
	section Section
	prefix  string
	strip   *regexp.Regexp
}

// The strip expressions remove the header word and any parenthetical label
// through the first colon, e.g. "SUBJECTIVE (Keluhan Subjektif):".
var headerRules = []headerRule{
	{SectionSubjective, "subjective", regexp.MustCompile(`(?i)^subjective[^:]*:`)},
	{SectionObjective, "objective", regexp.MustCompile(`(?i)^objective[^:]*:`)},
	{SectionAssessment, "assessment", regexp.MustCompile(`(?i)^assessment[^:]*:`)},
	{SectionPlan, "plan", regexp.MustCompile(`(?i)^plan[^:]*:`)},
	{SectionDiagnosis, "diagnosis", regexp.MustCompile(`(?i)^diagnosis[^:]*:`)},
	{SectionICD10, "icd-10", regexp.MustCompile(`(?i)^icd-10[^:]*:`)},
}

// Parse splits a note into its six sections. Segments that do not start with
// a recognized header are ignored; missing headers leave their section empty;
// a duplicated header overwrites the earlier assignment. Parse is total and
// never fails.
func Parse(content string) Sections {
	var sections Sections
	if strings.TrimSpace(content) == "" {
		return sections
	}

	for _, segment := range splitAtHeaders(content) {
		trimmed := strings.TrimSpace(segment)
		lower := strings.ToLower(trimmed)
		for _, rule := range headerRules {
			if strings.HasPrefix(lower, rule.prefix) {
				sections.set(rule.section, strings.TrimSpace(rule.strip.ReplaceAllString(trimmed, "")))
				break
			}
		}
	}
	return sections
}

func splitAtHeaders(content string) []string {
	starts := headerSplit.FindAllStringIndex(content, -1)
	if len(starts) == 0 {
		return []string{content}
	}

	segments := make([]string, 0, len(starts)+1)
	prev := 0
	for _, loc := range starts {
		segments = append(segments, content[prev:loc[0]])
		prev = loc[0]
	}
	return append(segments, content[prev:])
}

const banner = "S.O.A.P. - CATATAN MEDIS"

var sectionLabels = map[Section]string{
	SectionSubjective: "SUBJECTIVE (Keluhan Subjektif):",
	SectionObjective:  "OBJECTIVE (Temuan Objektif):",
	SectionAssessment: "ASSESSMENT (Penilaian):",
	SectionPlan:       "PLAN (Rencana Tindakan):",
	SectionDiagnosis:  "DIAGNOSIS (Kesimpulan Diagnosa):",
	SectionICD10:      "ICD-10 (Kode ICD-10):",
}

// Serialize assembles the six sections into the fixed note template: banner
// line, then each bilingual header followed by the section text verbatim.
// Parse(Serialize(s)) == s as long as no section value contains a line that
// starts with another section's header keyword.
func Serialize(sections Sections) string {
	var b strings.Builder
	b.WriteString(banner)
	for _, section := range SectionOrder {
		b.WriteString("\n\n")
		b.WriteString(sectionLabels[section])
		b.WriteString("\n")
		b.WriteString(sections.Get(section))
	}
	return b.String()
}

// UpdateSection replaces one section of a serialized note and re-assembles
// it, preserving the other five sections as last parsed. This is the only
// mutation path used for section-level edits.
func UpdateSection(content string, section Section, value string) string {
	sections := Parse(content)
	sections.set(section, value)
	return Serialize(sections)
}

// WordCount counts the words across all six sections.
func WordCount(sections Sections) int {
	parts := make([]string, 0, len(SectionOrder))
	for _, section := range SectionOrder {
		parts = append(parts, sections.Get(section))
	}
	return len(strings.Fields(strings.Join(parts, " ")))
}

// SectionWordCount counts the words of a single section.
func SectionWordCount(sections Sections, section Section) int {
	return len(strings.Fields(sections.Get(section)))
}

var (
	subjectiveStart   = regexp.MustCompile(`(?i)SUBJECTIVE`)
	diagnosisBoundary = regexp.MustCompile(`(?i)DIAGNOSIS|ICD-10`)
)

// NoteBody extracts the subjective-through-plan portion of a note: everything
// from the SUBJECTIVE header up to, not including, the first DIAGNOSIS or
// ICD-10 header. A note without a diagnosis header yet is returned whole from
// SUBJECTIVE onward; a note without a SUBJECTIVE header is returned whole.
func NoteBody(content string) string {
	rest := content
	if start := subjectiveStart.FindStringIndex(content); start != nil {
		rest = content[start[0]:]
	}
	if loc := diagnosisBoundary.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	return strings.TrimSpace(rest)
}
