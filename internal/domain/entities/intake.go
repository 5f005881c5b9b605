package entities

import "strings"

// PatientIntake is the dermatology intake form submitted by the frontend.
// Yes/No questions carry their free-text details in the matching *Details field.
type PatientIntake struct {
	Name                  string `json:"name" validate:"required"`
	DateOfBirth           string `json:"dob"`
	Gender                string `json:"gender"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email" validate:"omitempty,email"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`

	ChronicDiseases        string `json:"chronicDiseases"`
	ChronicDiseasesDetails string `json:"chronicDiseasesDetails"`
	Surgeries              string `json:"surgeries"`
	SurgeriesDetails       string `json:"surgeriesDetails"`
	Allergies              string `json:"allergies"`
	AllergiesDetails       string `json:"allergiesDetails"`
	Medications            string `json:"medications"`
	MedicationsDetails     string `json:"medicationsDetails"`
	SkinConditions         string `json:"skinConditions"`
	SkinConditionsDetails  string `json:"skinConditionsDetails"`

	DailySkincareProducts         string `json:"dailySkincareProducts"`
	ExfoliationFrequency          string `json:"exfoliationFrequency"`
	PrescriptionTreatments        string `json:"prescriptionTreatments"`
	PrescriptionTreatmentsDetails string `json:"prescriptionTreatmentsDetails"`
	WearSunscreen                 string `json:"wearSunscreen"`

	FamilySkinConditions        string `json:"familySkinConditions"`
	FamilySkinConditionsDetails string `json:"familySkinConditionsDetails"`
	FamilyCancerHistory         string `json:"familyCancerHistory"`
	FamilyCancerHistoryDetails  string `json:"familyCancerHistoryDetails"`

	PrimarySkinIssue     string `json:"primarySkinIssue" validate:"required"`
	IssueDuration        string `json:"issueDuration"`
	IssueProgress        string `json:"issueProgress"`
	TreatedBefore        string `json:"treatedBefore"`
	TreatedBeforeDetails string `json:"treatedBeforeDetails"`
	PainIrritation       string `json:"painIrritation"`
	OtherConditions      string `json:"otherConditions"`
	AdditionalNotes      string `json:"additionalNotes"`
}

// IntakeField is one labelled answer.
type IntakeField struct {
	Label string
	Value string
}

// IntakeSection groups answers under a heading.
type IntakeSection struct {
	Title  string
	Fields []IntakeField
}

// Sections returns the form grouped the way the summary is laid out. Empty
// answers are dropped, and a "Yes" answer is merged with its details.
func (p *PatientIntake) Sections() []IntakeSection {
	sections := []IntakeSection{
		{Title: "Patient Information", Fields: []IntakeField{
			{"Name", p.Name},
			{"Date of Birth", p.DateOfBirth},
			{"Gender", p.Gender},
			{"Phone", p.Phone},
			{"Email", p.Email},
			{"Emergency Contact", joinNonEmpty(" ", p.EmergencyContactName, p.EmergencyContactPhone)},
		}},
		{Title: "Medical History", Fields: []IntakeField{
			{"Chronic Diseases", yesNo(p.ChronicDiseases, p.ChronicDiseasesDetails)},
			{"Past Surgeries", yesNo(p.Surgeries, p.SurgeriesDetails)},
			{"Allergies", yesNo(p.Allergies, p.AllergiesDetails)},
			{"Current Medications", yesNo(p.Medications, p.MedicationsDetails)},
			{"Previous Skin Conditions", yesNo(p.SkinConditions, p.SkinConditionsDetails)},
		}},
		{Title: "Current Routine", Fields: []IntakeField{
			{"Daily Skincare Products", p.DailySkincareProducts},
			{"Exfoliation Frequency", p.ExfoliationFrequency},
			{"Prescription Treatments", yesNo(p.PrescriptionTreatments, p.PrescriptionTreatmentsDetails)},
			{"Wears Sunscreen", p.WearSunscreen},
		}},
		{Title: "Family History", Fields: []IntakeField{
			{"Family Skin Conditions", yesNo(p.FamilySkinConditions, p.FamilySkinConditionsDetails)},
			{"Family Cancer History", yesNo(p.FamilyCancerHistory, p.FamilyCancerHistoryDetails)},
		}},
		{Title: "Current Skin Issue", Fields: []IntakeField{
			{"Primary Issue", p.PrimarySkinIssue},
			{"Duration", p.IssueDuration},
			{"Progress", p.IssueProgress},
			{"Treated Before", yesNo(p.TreatedBefore, p.TreatedBeforeDetails)},
			{"Pain or Irritation", p.PainIrritation},
		}},
		{Title: "Additional Information", Fields: []IntakeField{
			{"Other Conditions", p.OtherConditions},
			{"Notes", p.AdditionalNotes},
		}},
	}

	out := sections[:0]
	for _, s := range sections {
		fields := s.Fields[:0]
		for _, f := range s.Fields {
			f.Value = strings.TrimSpace(f.Value)
			if f.Value != "" {
				fields = append(fields, f)
			}
		}
		if len(fields) > 0 {
			s.Fields = fields
			out = append(out, s)
		}
	}
	return out
}

func yesNo(answer, details string) string {
	details = strings.TrimSpace(details)
	if strings.EqualFold(strings.TrimSpace(answer), "yes") && details != "" {
		return "Yes (" + details + ")"
	}
	return answer
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
