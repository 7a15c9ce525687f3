package ui

import (
	"strings"

	"github.com/five82/intake/internal/directory"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/revision"
)

type fieldID string

const (
	fieldReport    fieldID = "report"
	fieldVet       fieldID = "veterinarian"
	fieldClinic    fieldID = "clinic"
	fieldName      fieldID = "name"
	fieldTutor     fieldID = "tutor"
	fieldSpecies   fieldID = "species"
	fieldBreed     fieldID = "breed"
	fieldSex       fieldID = "sex"
	fieldStatus    fieldID = "status"
	fieldWeight    fieldID = "weight"
	fieldBirthDate fieldID = "birth_date"
	fieldHabitat   fieldID = "habitat"
	fieldDiet      fieldID = "diet"
	fieldChipFlag  fieldID = "has_microchip"
	fieldChip      fieldID = "microchip"
	fieldRecord    fieldID = "clinical_record"
	fieldReferral  fieldID = "referral_clinic"
	fieldNotes     fieldID = "notes"
	fieldWebhook   fieldID = "webhook"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindChoice
	kindToggle
	kindPicker
)

type fieldDef struct {
	id       fieldID
	label    string
	required revision.Field // empty when the field is never mandatory
	extended bool
}

var formFields = []fieldDef{
	{id: fieldReport, label: "Report type", required: revision.FieldReport},
	{id: fieldVet, label: "Veterinarian", required: revision.FieldVeterinarian},
	{id: fieldClinic, label: "Clinic", required: revision.FieldClinic},
	{id: fieldName, label: "Patient name", required: revision.FieldName},
	{id: fieldTutor, label: "Tutor", required: revision.FieldTutor},
	{id: fieldSpecies, label: "Species", required: revision.FieldSpecies},
	{id: fieldBreed, label: "Breed", extended: true},
	{id: fieldSex, label: "Sex", required: revision.FieldSex},
	{id: fieldStatus, label: "Sterilization", required: revision.FieldStatus},
	{id: fieldWeight, label: "Weight (kg)", extended: true},
	{id: fieldBirthDate, label: "Birth date", extended: true},
	{id: fieldHabitat, label: "Habitat", extended: true},
	{id: fieldDiet, label: "Diet", extended: true},
	{id: fieldChipFlag, label: "Has microchip"},
	{id: fieldChip, label: "Microchip number"},
	{id: fieldRecord, label: "Clinical record no.", extended: true},
	{id: fieldReferral, label: "Referral clinic"},
	{id: fieldNotes, label: "Additional info"},
	{id: fieldWebhook, label: "Webhook URL", required: revision.FieldWebhook},
}

// fieldsFor returns the fields a revision shows, in display order.
func fieldsFor(rev revision.Revision) []fieldDef {
	out := make([]fieldDef, 0, len(formFields))
	for _, def := range formFields {
		if def.extended && !rev.ExtendedFields {
			continue
		}
		if def.id == fieldWebhook && rev.Webhook != revision.WebhookUser {
			continue
		}
		out = append(out, def)
	}
	return out
}

func isRequired(def fieldDef, rev revision.Revision) bool {
	return def.required != "" && rev.Requires(def.required)
}

// kindOf reports how a field is edited. Breed is free text only for a chosen
// species without a breed catalogue.
func kindOf(id fieldID, f form.Form) fieldKind {
	switch id {
	case fieldReport, fieldSpecies, fieldSex, fieldStatus, fieldHabitat, fieldDiet:
		return kindChoice
	case fieldBreed:
		if f.Patient.Species != "" && len(form.Breeds(f.Patient.Species)) == 0 {
			return kindText
		}
		return kindChoice
	case fieldChipFlag:
		return kindToggle
	case fieldVet, fieldClinic:
		return kindPicker
	default:
		return kindText
	}
}

// textFields lists every field that may be edited through a text input.
var textFields = []fieldID{
	fieldName, fieldTutor, fieldBreed, fieldWeight, fieldBirthDate,
	fieldChip, fieldRecord, fieldReferral, fieldNotes, fieldWebhook,
}

func textValue(id fieldID, f form.Form) string {
	p := f.Patient
	switch id {
	case fieldName:
		return p.Name
	case fieldTutor:
		return p.Tutor
	case fieldBreed:
		return p.Breed
	case fieldWeight:
		return p.Weight
	case fieldBirthDate:
		return p.BirthDate
	case fieldChip:
		return p.Microchip
	case fieldRecord:
		return p.ClinicalRecord
	case fieldReferral:
		return p.ReferralClinic
	case fieldNotes:
		return p.Notes
	case fieldWebhook:
		return f.Selections.WebhookURL
	}
	return ""
}

func setText(id fieldID, f *form.Form, value string) {
	p := &f.Patient
	switch id {
	case fieldName:
		p.Name = value
	case fieldTutor:
		p.Tutor = value
	case fieldBreed:
		f.SetBreed(value)
	case fieldWeight:
		p.Weight = value
	case fieldBirthDate:
		p.BirthDate = value
	case fieldChip:
		p.Microchip = value
	case fieldRecord:
		p.ClinicalRecord = value
	case fieldReferral:
		p.ReferralClinic = value
	case fieldNotes:
		p.Notes = value
	case fieldWebhook:
		f.Selections.WebhookURL = value
	}
}

type option struct {
	value string
	label string
}

// choiceOptions lists the values of a choice field. The first option is
// always the unset value.
func choiceOptions(id fieldID, rev revision.Revision, f form.Form) []option {
	out := []option{{value: "", label: "Select..."}}
	switch id {
	case fieldReport:
		for _, rt := range form.ReportTypes() {
			out = append(out, option{value: rt.Code, label: rt.Label})
		}
	case fieldSpecies:
		for _, s := range rev.Species {
			out = append(out, option{value: string(s), label: s.Label()})
		}
	case fieldBreed:
		for _, b := range form.Breeds(f.Patient.Species) {
			out = append(out, option{value: b, label: b})
		}
	case fieldSex:
		for _, s := range form.AllSexes() {
			out = append(out, option{value: string(s), label: s.Label()})
		}
	case fieldStatus:
		for _, s := range form.AllStatuses() {
			out = append(out, option{value: string(s), label: s.Label()})
		}
	case fieldHabitat:
		for _, h := range form.AllHabitats() {
			out = append(out, option{value: string(h), label: h.Label()})
		}
	case fieldDiet:
		for _, d := range form.AllDiets() {
			out = append(out, option{value: string(d), label: d.Label()})
		}
	}
	return out
}

func choiceValue(id fieldID, f form.Form) string {
	p := f.Patient
	switch id {
	case fieldReport:
		return f.Selections.ReportType
	case fieldSpecies:
		return string(p.Species)
	case fieldBreed:
		return p.Breed
	case fieldSex:
		return string(p.Sex)
	case fieldStatus:
		return string(p.Status)
	case fieldHabitat:
		return string(p.Habitat)
	case fieldDiet:
		return string(p.Diet)
	}
	return ""
}

func setChoice(id fieldID, f *form.Form, value string) {
	p := &f.Patient
	switch id {
	case fieldReport:
		f.SelectReport(value)
	case fieldSpecies:
		f.SetSpecies(form.Species(value))
	case fieldBreed:
		f.SetBreed(value)
	case fieldSex:
		p.Sex = form.Sex(value)
	case fieldStatus:
		p.Status = form.Status(value)
	case fieldHabitat:
		p.Habitat = form.Habitat(value)
	case fieldDiet:
		p.Diet = form.Diet(value)
	}
}

// cycleOption returns the value delta steps away from current, wrapping.
func cycleOption(options []option, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, opt := range options {
		if opt.value == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(options)) % len(options)
	return options[idx].value
}

func optionLabel(options []option, value string) string {
	for _, opt := range options {
		if opt.value == value {
			return opt.label
		}
	}
	return value
}

// pickerLabel renders the current veterinarian or clinic selection.
func pickerLabel(id fieldID, dir directory.Directory, f form.Form) string {
	switch id {
	case fieldVet:
		if v, ok := dir.Veterinarian(f.Selections.VeterinarianID); ok {
			return v.DisplayName
		}
	case fieldClinic:
		if c, ok := dir.Clinic(f.Selections.ClinicID); ok {
			return c.Address
		}
	}
	return ""
}

// sameText compares input and stored values ignoring surrounding whitespace,
// which some setters trim.
func sameText(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
