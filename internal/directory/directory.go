// Package directory holds the veterinarians and clinics a clinician can pick
// from while filling a report.
package directory

import (
	"strings"
)

// Veterinarian is a selectable report author.
type Veterinarian struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
}

// Clinic is a selectable practice location.
type Clinic struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// Directory is the in-memory set of veterinarians and clinics for a session.
type Directory struct {
	Veterinarians []Veterinarian
	Clinics       []Clinic
}

// DefaultVeterinarians returns the built-in veterinarian list.
func DefaultVeterinarians() []Veterinarian {
	return []Veterinarian{
		{ID: "001", DisplayName: "Antonio"},
		{ID: "002", DisplayName: "Miguel"},
		{ID: "003", DisplayName: "Dra. Ana López"},
	}
}

// DefaultClinics returns the built-in clinic list.
func DefaultClinics() []Clinic {
	return []Clinic{
		{ID: "001", Address: "C/ lafuente, 32"},
	}
}

// Default returns the built-in directory used when nothing better is known.
func Default() Directory {
	return Directory{
		Veterinarians: DefaultVeterinarians(),
		Clinics:       DefaultClinics(),
	}
}

// WithFallbacks substitutes the built-in list for any empty collection.
func (d Directory) WithFallbacks() Directory {
	out := d.Clone()
	if len(out.Veterinarians) == 0 {
		out.Veterinarians = DefaultVeterinarians()
	}
	if len(out.Clinics) == 0 {
		out.Clinics = DefaultClinics()
	}
	return out
}

// IsEmpty reports whether both collections are empty.
func (d Directory) IsEmpty() bool {
	return len(d.Veterinarians) == 0 && len(d.Clinics) == 0
}

// Clone returns a deep copy.
func (d Directory) Clone() Directory {
	var out Directory
	if len(d.Veterinarians) > 0 {
		out.Veterinarians = make([]Veterinarian, len(d.Veterinarians))
		copy(out.Veterinarians, d.Veterinarians)
	}
	if len(d.Clinics) > 0 {
		out.Clinics = make([]Clinic, len(d.Clinics))
		copy(out.Clinics, d.Clinics)
	}
	return out
}

// Veterinarian resolves a veterinarian by id.
func (d Directory) Veterinarian(id string) (Veterinarian, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Veterinarian{}, false
	}
	for _, v := range d.Veterinarians {
		if v.ID == id {
			return v, true
		}
	}
	return Veterinarian{}, false
}

// Clinic resolves a clinic by id.
func (d Directory) Clinic(id string) (Clinic, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Clinic{}, false
	}
	for _, c := range d.Clinics {
		if c.ID == id {
			return c, true
		}
	}
	return Clinic{}, false
}

// SearchVeterinarians returns the veterinarians whose name or id contains
// query, case-insensitively. An empty query returns the full list.
func (d Directory) SearchVeterinarians(query string) []Veterinarian {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return d.Clone().Veterinarians
	}
	var out []Veterinarian
	for _, v := range d.Veterinarians {
		if strings.Contains(strings.ToLower(v.DisplayName), query) ||
			strings.Contains(strings.ToLower(v.ID), query) {
			out = append(out, v)
		}
	}
	return out
}

// ShortName strips a leading courtesy title ("Dr." or "Dra.") from a display
// name. The downstream report generator adds its own.
func ShortName(displayName string) string {
	name := strings.TrimSpace(displayName)
	for _, prefix := range []string{"Dr.", "Dra."} {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(name, prefix))
		}
	}
	return name
}
