package form

import "strings"

// Species identifies the patient's species.
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesRabbit Species = "rabbit"
	SpeciesExotic Species = "exotic"
	SpeciesOther  Species = "other"
)

// Sex identifies the patient's sex.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Status identifies the patient's reproductive status.
type Status string

const (
	StatusIntact   Status = "intact"
	StatusNeutered Status = "neutered"
)

// Habitat describes where the patient lives.
type Habitat string

const (
	HabitatIndoor  Habitat = "indoor"
	HabitatOutdoor Habitat = "outdoor"
	HabitatMixed   Habitat = "mixed"
)

// Diet describes what the patient is fed.
type Diet string

const (
	DietCommercial Diet = "commercial"
	DietHomemade   Diet = "homemade"
	DietMixed      Diet = "mixed"
	DietRaw        Diet = "barf"
)

// Labels sent downstream. The report generator expects the Spanish wording.
var (
	speciesLabels = map[Species]string{
		SpeciesDog:    "Perro",
		SpeciesCat:    "Gato",
		SpeciesRabbit: "Conejo",
		SpeciesExotic: "Exótico",
		SpeciesOther:  "Otro",
	}
	sexLabels = map[Sex]string{
		SexMale:   "Macho",
		SexFemale: "Hembra",
	}
	statusLabels = map[Status]string{
		StatusIntact:   "Entero",
		StatusNeutered: "Castrado",
	}
	habitatLabels = map[Habitat]string{
		HabitatIndoor:  "Interior",
		HabitatOutdoor: "Exterior",
		HabitatMixed:   "Mixto",
	}
	dietLabels = map[Diet]string{
		DietCommercial: "Pienso comercial",
		DietHomemade:   "Casera",
		DietMixed:      "Mixta",
		DietRaw:        "BARF",
	}
)

// Label returns the downstream label, or the empty string when unset.
func (s Species) Label() string { return speciesLabels[s] }

// Label returns the downstream label, or the empty string when unset.
func (s Sex) Label() string { return sexLabels[s] }

// Label returns the downstream label, or the empty string when unset.
func (s Status) Label() string { return statusLabels[s] }

// Label returns the downstream label, or the empty string when unset.
func (h Habitat) Label() string { return habitatLabels[h] }

// Label returns the downstream label, or the empty string when unset.
func (d Diet) Label() string { return dietLabels[d] }

// AllSpecies lists every species in display order.
func AllSpecies() []Species {
	return []Species{SpeciesDog, SpeciesCat, SpeciesRabbit, SpeciesExotic, SpeciesOther}
}

// AllSexes lists every sex in display order.
func AllSexes() []Sex { return []Sex{SexMale, SexFemale} }

// AllStatuses lists every reproductive status in display order.
func AllStatuses() []Status { return []Status{StatusIntact, StatusNeutered} }

// AllHabitats lists every habitat in display order.
func AllHabitats() []Habitat { return []Habitat{HabitatIndoor, HabitatOutdoor, HabitatMixed} }

// AllDiets lists every diet in display order.
func AllDiets() []Diet { return []Diet{DietCommercial, DietHomemade, DietMixed, DietRaw} }

var breeds = map[Species][]string{
	SpeciesDog: {
		"Mestizo", "Labrador Retriever", "Golden Retriever", "Pastor Alemán",
		"Bulldog Francés", "Chihuahua", "Yorkshire Terrier", "Podenco", "Galgo",
	},
	SpeciesCat: {
		"Común Europeo", "Siamés", "Persa", "Maine Coon", "British Shorthair",
	},
	SpeciesRabbit: {
		"Belier", "Cabeza de León", "Enano Holandés", "Rex",
	},
	SpeciesExotic: {
		"Hurón", "Cobaya", "Hámster", "Erizo", "Loro", "Tortuga",
	},
}

// Breeds returns the breed options for a species. Species without a breed
// catalogue return nil.
func Breeds(s Species) []string {
	list := breeds[s]
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// ReportType is a selectable report template.
type ReportType struct {
	Code  string
	Label string
}

var reportTypes = []ReportType{
	{Code: "anamnesis", Label: "Anamnesis"},
	{Code: "ecocardio", Label: "Informe ecocardio"},
	{Code: "cardiaco", Label: "Informe cardíaco"},
	{Code: "ecografia-general", Label: "Informe ecografía general"},
	{Code: "consulta", Label: "Informe consulta"},
	{Code: "ecografia-abdomen", Label: "Ecografía abdomen"},
}

// ReportTypes lists every report type in display order.
func ReportTypes() []ReportType {
	out := make([]ReportType, len(reportTypes))
	copy(out, reportTypes)
	return out
}

// ReportLabel returns the display label for a report code. Unknown codes are
// returned unchanged.
func ReportLabel(code string) string {
	code = strings.TrimSpace(code)
	for _, rt := range reportTypes {
		if rt.Code == code {
			return rt.Label
		}
	}
	return code
}
