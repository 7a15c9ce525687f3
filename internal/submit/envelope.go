package submit

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/directory"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/revision"
	"github.com/five82/intake/internal/webhook"
)

// createdAtLayout matches the millisecond UTC timestamps the automation
// flows already parse.
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// Request is everything a submission is built from.
type Request struct {
	Revision  revision.Revision
	User      string
	Form      form.Form
	Note      audio.Note
	Directory directory.Directory
}

// VetEntry is one row of the veterinarian snapshot.
type VetEntry struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Extended holds the fields only some revisions send.
type Extended struct {
	Breed                string
	Weight               *float64
	BirthDate            string
	Habitat              string
	Diet                 string
	ClinicalRecordNumber string
}

// Envelope is the denormalised snapshot sent to the report webhook.
type Envelope struct {
	CreatedAt       time.Time
	User            string
	ClientName      string
	TutorName       string
	ReportLabel     string
	Species         string
	Sex             string
	Sterilization   string
	ReferralClinic  string
	HasMicrochip    bool
	MicrochipNumber string
	Notes           string
	AudioData       string
	ReportFileID    string
	SelectedVet     *string
	SelectedClinic  *directory.Clinic
	VetList         []VetEntry
	ClinicList      []directory.Clinic
	Extended        *Extended
}

// Build assembles the envelope for req. Unresolved veterinarian or clinic
// ids yield nil, never an error.
func Build(req Request, now time.Time) Envelope {
	p := req.Form.Patient
	sel := req.Form.Selections

	env := Envelope{
		CreatedAt:       now.UTC(),
		User:            strings.TrimSpace(req.User),
		ClientName:      strings.TrimSpace(p.Name),
		TutorName:       strings.TrimSpace(p.Tutor),
		ReportLabel:     form.ReportLabel(sel.ReportType),
		Species:         p.Species.Label(),
		Sex:             p.Sex.Label(),
		Sterilization:   p.Status.Label(),
		ReferralClinic:  strings.TrimSpace(p.ReferralClinic),
		HasMicrochip:    p.HasMicrochip,
		MicrochipNumber: req.Form.MicrochipForSubmission(),
		Notes:           p.Notes,
		AudioData:       req.Note.DataURI,
	}

	if vet, ok := req.Directory.Veterinarian(sel.VeterinarianID); ok {
		name := directory.ShortName(vet.DisplayName)
		env.SelectedVet = &name
	}
	if clinic, ok := req.Directory.Clinic(sel.ClinicID); ok {
		env.SelectedClinic = &clinic
	}

	env.VetList = make([]VetEntry, 0, len(req.Directory.Veterinarians))
	for _, v := range req.Directory.Veterinarians {
		env.VetList = append(env.VetList, VetEntry{Name: v.DisplayName, Number: v.ID})
	}
	env.ClinicList = append(make([]directory.Clinic, 0, len(req.Directory.Clinics)), req.Directory.Clinics...)

	if req.Revision.ExtendedFields {
		ext := &Extended{
			Breed:                p.Breed,
			BirthDate:            strings.TrimSpace(p.BirthDate),
			Habitat:              p.Habitat.Label(),
			Diet:                 p.Diet.Label(),
			ClinicalRecordNumber: strings.TrimSpace(p.ClinicalRecord),
		}
		if kg, ok := p.ParsedWeight(); ok {
			ext.Weight = &kg
		}
		env.Extended = ext
	}
	return env
}

// Fields flattens the envelope into ordered text parts. Nested values are
// JSON text; nil renders as "null".
func (e Envelope) Fields(encoding revision.DirectoryEncoding) ([]webhook.Field, error) {
	var out []webhook.Field
	add := func(name, value string) {
		out = append(out, webhook.Field{Name: name, Value: value})
	}

	add("createdAt", e.CreatedAt.UTC().Format(createdAtLayout))
	add("loggedIn", "true")
	add("user", e.User)
	add("clientName", e.ClientName)
	add("tutorName", e.TutorName)
	add("selectedReport", e.ReportLabel)
	add("species", e.Species)
	add("sex", e.Sex)
	add("sterilization", e.Sterilization)
	add("referralClinic", e.ReferralClinic)
	add("hasMicrochip", strconv.FormatBool(e.HasMicrochip))
	add("microchipNumber", e.MicrochipNumber)
	add("infoAdicional", e.Notes)
	add("audioData", e.AudioData)
	add("reportFileID", e.ReportFileID)
	if e.SelectedVet != nil {
		add("selectedVet", *e.SelectedVet)
	} else {
		add("selectedVet", "null")
	}

	clinic, err := jsonText(e.SelectedClinic)
	if err != nil {
		return nil, err
	}
	add("selectedClinic", clinic)

	switch encoding {
	case revision.EncodingRepeated:
		if err := addRepeated(add, "vetList", e.VetList); err != nil {
			return nil, err
		}
		if err := addRepeated(add, "clinicList", e.ClinicList); err != nil {
			return nil, err
		}
	default:
		vets, err := jsonText(nonNil(e.VetList))
		if err != nil {
			return nil, err
		}
		add("vetList", vets)
		clinics, err := jsonText(nonNil(e.ClinicList))
		if err != nil {
			return nil, err
		}
		add("clinicList", clinics)
	}

	if ext := e.Extended; ext != nil {
		add("breed", ext.Breed)
		if ext.Weight != nil {
			add("weight", strconv.FormatFloat(*ext.Weight, 'f', -1, 64))
		} else {
			add("weight", "")
		}
		add("birthDate", ext.BirthDate)
		add("habitat", ext.Habitat)
		add("diet", ext.Diet)
		add("clinicalRecordNumber", ext.ClinicalRecordNumber)
	}
	return out, nil
}

func addRepeated[T any](add func(name, value string), name string, items []T) error {
	if len(items) == 0 {
		add(name, "[]")
		return nil
	}
	for _, item := range items {
		text, err := jsonText(item)
		if err != nil {
			return err
		}
		add(name, text)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func jsonText(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
