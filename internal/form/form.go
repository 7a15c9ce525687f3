// Package form holds the patient record and selections a clinician edits
// before submitting a report.
//
// The form performs no validation: presence checks happen when a report is
// submitted. It does enforce one cross-field dependency, breed options are
// keyed by species, so changing species drops a previously chosen breed.
package form

import (
	"strconv"
	"strings"
)

// Patient is the patient/visit part of a report.
type Patient struct {
	Name           string
	Tutor          string
	Species        Species
	Sex            Sex
	Status         Status
	HasMicrochip   bool
	Microchip      string
	Breed          string
	Weight         string // decimal kilograms as typed
	BirthDate      string // YYYY-MM-DD
	Habitat        Habitat
	Diet           Diet
	Notes          string
	ReferralClinic string
	ClinicalRecord string
}

// Selections are the non-patient choices of a report.
type Selections struct {
	ReportType     string
	VeterinarianID string
	ClinicID       string
	WebhookURL     string
}

// Form is the editable report state.
type Form struct {
	Patient    Patient
	Selections Selections
}

// SetSpecies changes the species. Choosing a different species clears the breed.
func (f *Form) SetSpecies(s Species) {
	if f.Patient.Species != s {
		f.Patient.Breed = ""
	}
	f.Patient.Species = s
}

// SetBreed selects a breed. Breeds outside the current species' catalogue are
// accepted as free text for species without a catalogue only.
func (f *Form) SetBreed(breed string) bool {
	breed = strings.TrimSpace(breed)
	if breed == "" {
		f.Patient.Breed = ""
		return true
	}
	options := Breeds(f.Patient.Species)
	if len(options) == 0 {
		if f.Patient.Species == "" {
			return false
		}
		f.Patient.Breed = breed
		return true
	}
	for _, opt := range options {
		if opt == breed {
			f.Patient.Breed = breed
			return true
		}
	}
	return false
}

// SetMicrochipPresent toggles the microchip flag. The number is kept as typed.
func (f *Form) SetMicrochipPresent(present bool) {
	f.Patient.HasMicrochip = present
}

// MicrochipForSubmission returns the microchip number only when the flag is on.
func (f Form) MicrochipForSubmission() string {
	if !f.Patient.HasMicrochip {
		return ""
	}
	return strings.TrimSpace(f.Patient.Microchip)
}

// SelectReport sets the report type code.
func (f *Form) SelectReport(code string) {
	f.Selections.ReportType = strings.TrimSpace(code)
}

// SelectVeterinarian sets the veterinarian id.
func (f *Form) SelectVeterinarian(id string) {
	f.Selections.VeterinarianID = strings.TrimSpace(id)
}

// SelectClinic sets the clinic id.
func (f *Form) SelectClinic(id string) {
	f.Selections.ClinicID = strings.TrimSpace(id)
}

// ParsedWeight parses the typed weight. ok is false when the field is blank or not
// a positive number; a comma decimal separator is accepted.
func (p Patient) ParsedWeight() (kg float64, ok bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(p.Weight), ",", ".")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Clear resets every field and selection.
func (f *Form) Clear() {
	*f = Form{}
}

// IsZero reports whether nothing has been entered.
func (f Form) IsZero() bool {
	return f == Form{}
}
