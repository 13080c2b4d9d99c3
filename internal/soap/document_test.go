package soap

import (
	"strings"
	"testing"
)

func TestParse_Empty(t *testing.T) {
	got := Parse("")
	if got != (Sections{}) {
		t.Errorf("Expected all sections empty, got %+v", got)
	}

	got = Parse("   \n\n  ")
	if got != (Sections{}) {
		t.Errorf("Expected all sections empty for whitespace input, got %+v", got)
	}
}

func TestParse_FullNote(t *testing.T) {
	content := `S.O.A.P. - CATATAN MEDIS

SUBJECTIVE (Keluhan Subjektif):
- Pasien mengeluh sakit kepala sejak 3 hari yang lalu

OBJECTIVE (Temuan Objektif):
- Pemeriksaan tekanan darah dan suhu tubuh

ASSESSMENT (Penilaian):
- Tension headache

PLAN (Rencana Tindakan):
1. Pemberian analgesik

DIAGNOSIS (Kesimpulan Diagnosa):
Tension headache

ICD-10 (Kode ICD-10):
G44.2`

	got := Parse(content)
	if got.Subjective != "- Pasien mengeluh sakit kepala sejak 3 hari yang lalu" {
		t.Errorf("Unexpected subjective: %q", got.Subjective)
	}
	if got.Objective != "- Pemeriksaan tekanan darah dan suhu tubuh" {
		t.Errorf("Unexpected objective: %q", got.Objective)
	}
	if got.Assessment != "- Tension headache" {
		t.Errorf("Unexpected assessment: %q", got.Assessment)
	}
	if got.Plan != "1. Pemberian analgesik" {
		t.Errorf("Unexpected plan: %q", got.Plan)
	}
	if got.Diagnosis != "Tension headache" {
		t.Errorf("Unexpected diagnosis: %q", got.Diagnosis)
	}
	if got.ICD10 != "G44.2" {
		t.Errorf("Unexpected icd10: %q", got.ICD10)
	}
}

func TestParse_HeaderCaseInsensitive(t *testing.T) {
	got := Parse("subjective: keluhan\nObJeCtIvE: temuan")
	if got.Subjective != "keluhan" {
		t.Errorf("Unexpected subjective: %q", got.Subjective)
	}
	if got.Objective != "temuan" {
		t.Errorf("Unexpected objective: %q", got.Objective)
	}
}

func TestParse_DuplicateHeaderLastWriteWins(t *testing.T) {
	got := Parse("PLAN: pertama\nPLAN: kedua")
	if got.Plan != "kedua" {
		t.Errorf("Expected last assignment to win, got %q", got.Plan)
	}
}

func TestParse_MissingColonKeepsSegmentText(t *testing.T) {
	// Without a colon the header prefix is not stripped; the segment is
	// still assigned so no text is lost.
	got := Parse("ASSESSMENT belum lengkap")
	if got.Assessment != "ASSESSMENT belum lengkap" {
		t.Errorf("Unexpected assessment: %q", got.Assessment)
	}
}

func TestParse_UnrecognizedSegmentIgnored(t *testing.T) {
	got := Parse("catatan bebas tanpa header")
	if got != (Sections{}) {
		t.Errorf("Expected free text without headers to be ignored, got %+v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []Sections{
		{},
		{Subjective: "X"},
		{Subjective: "sakit kepala", Objective: "TD 120/80", Assessment: "tension headache", Plan: "analgesik", Diagnosis: "G44.2 tension headache", ICD10: "G44.2"},
		{Plan: "1. istirahat\n2. kontrol 3 hari", ICD10: "J00"},
	}

	for i, sections := range cases {
		got := Parse(Serialize(sections))
		if got != sections {
			t.Errorf("case %d: round-trip mismatch\nwant %+v\ngot  %+v", i, sections, got)
		}
	}
}

func TestUpdateSection(t *testing.T) {
	content := Serialize(Sections{Subjective: "X"})

	updated := UpdateSection(content, SectionObjective, "Y")
	got := Parse(updated)

	if got.Subjective != "X" {
		t.Errorf("Expected subjective preserved as 'X', got %q", got.Subjective)
	}
	if got.Objective != "Y" {
		t.Errorf("Expected objective updated to 'Y', got %q", got.Objective)
	}
	if got.Assessment != "" || got.Plan != "" || got.Diagnosis != "" || got.ICD10 != "" {
		t.Errorf("Expected remaining sections empty, got %+v", got)
	}
}

func TestUpdateSection_Idempotent(t *testing.T) {
	content := Serialize(Sections{Subjective: "A", Plan: "B"})

	once := UpdateSection(content, SectionPlan, "C")
	twice := UpdateSection(once, SectionPlan, "C")
	if once != twice {
		t.Errorf("Expected repeated update to be idempotent\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestWordCount(t *testing.T) {
	got := WordCount(Sections{Subjective: "a b", Objective: "c"})
	if got != 3 {
		t.Errorf("Expected 3 words, got %d", got)
	}

	if got := WordCount(Sections{}); got != 0 {
		t.Errorf("Expected 0 words for empty sections, got %d", got)
	}
}

func TestSectionWordCount(t *testing.T) {
	sections := Sections{Plan: "istirahat  cukup\nkontrol"}
	if got := SectionWordCount(sections, SectionPlan); got != 3 {
		t.Errorf("Expected 3 words, got %d", got)
	}
	if got := SectionWordCount(sections, SectionICD10); got != 0 {
		t.Errorf("Expected 0 words, got %d", got)
	}
}

func TestSectionFromKey(t *testing.T) {
	if section, ok := SectionFromKey(" ICD10 "); !ok || section != SectionICD10 {
		t.Errorf("Expected icd10 section, got %q ok=%v", section, ok)
	}
	if _, ok := SectionFromKey("vitals"); ok {
		t.Error("Expected unknown key to be rejected")
	}
}

func TestNoteBody_StopsBeforeDiagnosis(t *testing.T) {
	content := Serialize(Sections{Subjective: "sakit kepala", Plan: "analgesik", Diagnosis: "tension headache", ICD10: "G44.2"})

	body := NoteBody(content)
	if !strings.HasPrefix(body, "SUBJECTIVE") {
		t.Errorf("Expected body to start at SUBJECTIVE header, got %q", body)
	}
	if strings.Contains(body, "DIAGNOSIS") || strings.Contains(body, "ICD-10") {
		t.Errorf("Expected diagnosis headers excluded, got %q", body)
	}
	if !strings.Contains(body, "analgesik") {
		t.Errorf("Expected plan text included, got %q", body)
	}
}

func TestNoteBody_NoDiagnosisHeaderTakesRemainder(t *testing.T) {
	content := "SUBJECTIVE: sakit kepala\n\nPLAN: analgesik"

	body := NoteBody(content)
	if body != content {
		t.Errorf("Expected full remainder when no diagnosis header, got %q", body)
	}
}

func TestNoteBody_NoSubjectiveHeader(t *testing.T) {
	body := NoteBody("catatan tanpa header sama sekali")
	if body != "catatan tanpa header sama sekali" {
		t.Errorf("Expected whole content, got %q", body)
	}
}
