// Package revision describes the supported form revisions.
//
// The intake form evolved through several revisions that differ only in
// configuration: which fields are mandatory, where the veterinarian/clinic
// directory comes from, and whether the webhook URL is typed by the user or
// fixed. A Revision captures those differences so the rest of the code has a
// single path.
package revision

import (
	"fmt"
	"sort"
	"strings"

	"github.com/five82/intake/internal/form"
)

// Field names a mandatory form field.
type Field string

const (
	FieldName         Field = "name"
	FieldTutor        Field = "tutor"
	FieldReport       Field = "report"
	FieldSpecies      Field = "species"
	FieldSex          Field = "sex"
	FieldStatus       Field = "status"
	FieldVeterinarian Field = "veterinarian"
	FieldClinic       Field = "clinic"
	FieldAudio        Field = "audio"
	FieldWebhook      Field = "webhook"
)

// DirectorySource selects where the directory comes from.
type DirectorySource string

const (
	DirectoryStatic DirectorySource = "static"
	DirectoryLogin  DirectorySource = "login"
)

// WebhookSource selects where the submission URL comes from.
type WebhookSource string

const (
	WebhookUser  WebhookSource = "user"
	WebhookFixed WebhookSource = "fixed"
)

// DirectoryEncoding selects how directory snapshots are flattened.
type DirectoryEncoding string

const (
	// EncodingJSON sends each directory list as one JSON text field.
	EncodingJSON DirectoryEncoding = "json"
	// EncodingRepeated appends one JSON object per entry under the same key.
	EncodingRepeated DirectoryEncoding = "repeated"
)

// Revision is a named form profile.
type Revision struct {
	Name              string
	Directory         DirectorySource
	Webhook           WebhookSource
	Mandatory         []Field
	Species           []form.Species
	ExtendedFields    bool
	ResetAfterSubmit  bool
	DirectoryEncoding DirectoryEncoding
}

var baseMandatory = []Field{
	FieldName, FieldTutor, FieldReport, FieldSpecies, FieldSex, FieldStatus,
}

// Default is the revision used when none is configured.
const Default = "directory"

var revisions = map[string]Revision{
	"basic": {
		Name:              "basic",
		Directory:         DirectoryStatic,
		Webhook:           WebhookUser,
		Mandatory:         append(append([]Field(nil), baseMandatory...), FieldWebhook),
		Species:           []form.Species{form.SpeciesDog, form.SpeciesCat, form.SpeciesRabbit, form.SpeciesOther},
		DirectoryEncoding: EncodingJSON,
	},
	"extended": {
		Name:              "extended",
		Directory:         DirectoryStatic,
		Webhook:           WebhookFixed,
		Mandatory:         append([]Field(nil), baseMandatory...),
		Species:           form.AllSpecies(),
		ExtendedFields:    true,
		DirectoryEncoding: EncodingJSON,
	},
	"directory": {
		Name:      "directory",
		Directory: DirectoryLogin,
		Webhook:   WebhookFixed,
		Mandatory: append(append([]Field(nil), baseMandatory...),
			FieldVeterinarian, FieldClinic, FieldAudio),
		Species:           form.AllSpecies(),
		ExtendedFields:    true,
		ResetAfterSubmit:  true,
		DirectoryEncoding: EncodingJSON,
	},
}

// Lookup returns the named revision. An empty name selects Default.
func Lookup(name string) (Revision, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default
	}
	rev, ok := revisions[name]
	if !ok {
		return Revision{}, fmt.Errorf("unknown revision %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return rev.clone(), nil
}

// Names lists the known revision names, sorted.
func Names() []string {
	names := make([]string, 0, len(revisions))
	for name := range revisions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Requires reports whether field is mandatory in this revision.
func (r Revision) Requires(field Field) bool {
	for _, f := range r.Mandatory {
		if f == field {
			return true
		}
	}
	return false
}

func (r Revision) clone() Revision {
	out := r
	out.Mandatory = append([]Field(nil), r.Mandatory...)
	out.Species = append([]form.Species(nil), r.Species...)
	return out
}
