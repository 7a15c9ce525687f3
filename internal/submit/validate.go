package submit

import (
	"strings"

	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/revision"
)

// Validate returns the mandatory fields of rev that f and note leave empty,
// in the revision's order. It performs no I/O.
func Validate(rev revision.Revision, f form.Form, note audio.Note) []string {
	var missing []string
	for _, field := range rev.Mandatory {
		if !present(field, f, note) {
			missing = append(missing, string(field))
		}
	}
	return missing
}

func present(field revision.Field, f form.Form, note audio.Note) bool {
	p := f.Patient
	sel := f.Selections
	switch field {
	case revision.FieldName:
		return filled(p.Name)
	case revision.FieldTutor:
		return filled(p.Tutor)
	case revision.FieldReport:
		return filled(sel.ReportType)
	case revision.FieldSpecies:
		return p.Species != ""
	case revision.FieldSex:
		return p.Sex != ""
	case revision.FieldStatus:
		return p.Status != ""
	case revision.FieldVeterinarian:
		return filled(sel.VeterinarianID)
	case revision.FieldClinic:
		return filled(sel.ClinicID)
	case revision.FieldAudio:
		return !note.IsZero()
	case revision.FieldWebhook:
		return filled(sel.WebhookURL)
	default:
		return true
	}
}

func filled(s string) bool {
	return strings.TrimSpace(s) != ""
}
