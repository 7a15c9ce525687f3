package submit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/five82/intake/internal/apperr"
	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/directory"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/revision"
	"github.com/five82/intake/internal/webhook"
)

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) PostForm(ctx context.Context, rawURL string, fields []webhook.Field) (webhook.Response, error) {
	args := m.Called(ctx, rawURL, fields)
	resp, _ := args.Get(0).(webhook.Response)
	return resp, args.Error(1)
}

var fixedNow = time.Date(2024, 3, 5, 9, 7, 1, 42_000_000, time.UTC)

func mustRevision(t *testing.T, name string) revision.Revision {
	t.Helper()
	rev, err := revision.Lookup(name)
	require.NoError(t, err)
	return rev
}

func completeForm() form.Form {
	var f form.Form
	f.Patient.Name = "Luna"
	f.Patient.Tutor = "Marta"
	f.SetSpecies(form.SpeciesDog)
	f.Patient.Sex = form.SexFemale
	f.Patient.Status = form.StatusNeutered
	f.SelectReport("ecocardio")
	f.SelectVeterinarian("003")
	f.SelectClinic("001")
	return f
}

func sampleNote() audio.Note {
	return audio.Note{DataURI: "data:audio/mp4;base64,AAE=", Captured: audio.PreferredMIME, Size: 2}
}

func fieldMap(fields []webhook.Field) map[string][]string {
	out := make(map[string][]string)
	for _, f := range fields {
		out[f.Name] = append(out[f.Name], f.Value)
	}
	return out
}

func TestValidate_ReportsMissingFieldsInRevisionOrder(t *testing.T) {
	rev := mustRevision(t, "directory")

	missing := Validate(rev, form.Form{}, audio.Note{})

	assert.Equal(t, []string{
		"name", "tutor", "report", "species", "sex", "status", "veterinarian", "clinic", "audio",
	}, missing)
	assert.Empty(t, Validate(rev, completeForm(), sampleNote()))
}

func TestValidate_WhitespaceIsMissing(t *testing.T) {
	f := completeForm()
	f.Patient.Name = "   "

	assert.Equal(t, []string{"name"}, Validate(mustRevision(t, "extended"), f, audio.Note{}))
}

func TestValidate_BasicRevisionRequiresWebhook(t *testing.T) {
	rev := mustRevision(t, "basic")
	f := completeForm()

	assert.Equal(t, []string{"webhook"}, Validate(rev, f, audio.Note{}))

	f.Selections.WebhookURL = "https://n8n.example/webhook/x"
	assert.Empty(t, Validate(rev, f, audio.Note{}))
}

func TestSubmit_MissingMandatoryFieldMakesNoRequest(t *testing.T) {
	for _, name := range revision.Names() {
		rev := mustRevision(t, name)
		for _, field := range rev.Mandatory {
			t.Run(fmt.Sprintf("%s/%s", name, field), func(t *testing.T) {
				poster := new(mockPoster)
				f := completeForm()
				f.Selections.WebhookURL = "https://n8n.example/webhook/x"
				note := sampleNote()
				blank(field, &f, &note)

				_, err := NewSender(poster, "https://fixed.example/hook").
					Submit(context.Background(), Request{Revision: rev, User: "u", Form: f, Note: note, Directory: directory.Default()})

				require.Error(t, err)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				assert.Equal(t, []string{string(field)}, apperr.MissingFields(err))
				poster.AssertNotCalled(t, "PostForm", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	}
}

func blank(field revision.Field, f *form.Form, note *audio.Note) {
	switch field {
	case revision.FieldName:
		f.Patient.Name = ""
	case revision.FieldTutor:
		f.Patient.Tutor = ""
	case revision.FieldReport:
		f.Selections.ReportType = ""
	case revision.FieldSpecies:
		f.Patient.Species = ""
	case revision.FieldSex:
		f.Patient.Sex = ""
	case revision.FieldStatus:
		f.Patient.Status = ""
	case revision.FieldVeterinarian:
		f.Selections.VeterinarianID = ""
	case revision.FieldClinic:
		f.Selections.ClinicID = ""
	case revision.FieldAudio:
		*note = audio.Note{}
	case revision.FieldWebhook:
		f.Selections.WebhookURL = ""
	}
}

func TestSubmit_UnresolvedVeterinarianStillSends(t *testing.T) {
	poster := new(mockPoster)
	var sent []webhook.Field
	poster.On("PostForm", mock.Anything, "https://fixed.example/hook", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).([]webhook.Field) }).
		Return(webhook.Response{Status: 200}, nil).Once()

	f := completeForm()
	f.SelectVeterinarian("999")

	env, err := NewSender(poster, "https://fixed.example/hook", WithClock(func() time.Time { return fixedNow })).
		Submit(context.Background(), Request{
			Revision:  mustRevision(t, "directory"),
			User:      "Testing",
			Form:      f,
			Note:      sampleNote(),
			Directory: directory.Default(),
		})

	require.NoError(t, err)
	assert.Nil(t, env.SelectedVet)
	require.NotNil(t, env.SelectedClinic)
	assert.Equal(t, "C/ lafuente, 32", env.SelectedClinic.Address)
	assert.Equal(t, []string{"null"}, fieldMap(sent)["selectedVet"])
	poster.AssertExpectations(t)
}

func TestSubmit_UsesUserWebhookForBasicRevision(t *testing.T) {
	poster := new(mockPoster)
	poster.On("PostForm", mock.Anything, "https://n8n.example/webhook/x", mock.Anything).
		Return(webhook.Response{Status: 500}, nil).Once()

	f := completeForm()
	f.Selections.WebhookURL = "  https://n8n.example/webhook/x "

	_, err := NewSender(poster, "https://fixed.example/hook").
		Submit(context.Background(), Request{Revision: mustRevision(t, "basic"), Form: f, Directory: directory.Default()})

	require.NoError(t, err, "the response status is not interpreted")
	poster.AssertExpectations(t)
}

func TestSend_ClassifiesFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"transport", fmt.Errorf("%w: dial tcp: refused", webhook.ErrTransport), apperr.KindConnectivity},
		{"bad url", fmt.Errorf("%w: empty", webhook.ErrInvalidURL), apperr.KindSubmission},
		{"other", errors.New("boom"), apperr.KindSubmission},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			poster := new(mockPoster)
			poster.On("PostForm", mock.Anything, mock.Anything, mock.Anything).Return(webhook.Response{}, tc.err)

			err := NewSender(poster, "").Send(context.Background(), "https://x.example", nil)

			assert.Equal(t, tc.want, apperr.KindOf(err))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestBuild_Envelope(t *testing.T) {
	f := completeForm()
	f.Patient.HasMicrochip = true
	f.Patient.Microchip = " 941000024 "
	f.Patient.Notes = "tos nocturna"
	f.Patient.Weight = "12,5"
	f.Patient.Breed = "Galgo"

	env := Build(Request{
		Revision:  mustRevision(t, "directory"),
		User:      "Testing",
		Form:      f,
		Note:      sampleNote(),
		Directory: directory.Default(),
	}, fixedNow.In(time.FixedZone("CET", 3600)))

	assert.Equal(t, fixedNow, env.CreatedAt)
	assert.Equal(t, "Informe ecocardio", env.ReportLabel)
	assert.Equal(t, "Perro", env.Species)
	assert.Equal(t, "Hembra", env.Sex)
	assert.Equal(t, "Castrado", env.Sterilization)
	assert.Equal(t, "941000024", env.MicrochipNumber)
	require.NotNil(t, env.SelectedVet)
	assert.Equal(t, "Ana López", *env.SelectedVet)
	assert.Len(t, env.VetList, 3)
	assert.Equal(t, VetEntry{Name: "Dra. Ana López", Number: "003"}, env.VetList[2])
	require.NotNil(t, env.Extended)
	require.NotNil(t, env.Extended.Weight)
	assert.InDelta(t, 12.5, *env.Extended.Weight, 1e-9)
	assert.Equal(t, "Galgo", env.Extended.Breed)
}

func TestBuild_MicrochipExcludedWhenFlagOff(t *testing.T) {
	f := completeForm()
	f.Patient.Microchip = "941000024"

	env := Build(Request{Revision: mustRevision(t, "basic"), Form: f}, fixedNow)

	assert.False(t, env.HasMicrochip)
	assert.Empty(t, env.MicrochipNumber)
	assert.Nil(t, env.Extended)
}

func TestEnvelope_FieldsJSONEncoding(t *testing.T) {
	f := completeForm()
	f.SelectClinic("404")
	env := Build(Request{
		Revision:  mustRevision(t, "extended"),
		User:      "Testing",
		Form:      f,
		Directory: directory.Directory{Veterinarians: []directory.Veterinarian{{ID: "1", DisplayName: "Dr. A"}}},
	}, fixedNow)

	fields, err := env.Fields(revision.EncodingJSON)
	require.NoError(t, err)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"createdAt", "loggedIn", "user", "clientName", "tutorName", "selectedReport",
		"species", "sex", "sterilization", "referralClinic", "hasMicrochip",
		"microchipNumber", "infoAdicional", "audioData", "reportFileID",
		"selectedVet", "selectedClinic", "vetList", "clinicList",
		"breed", "weight", "birthDate", "habitat", "diet", "clinicalRecordNumber",
	}, names)

	got := fieldMap(fields)
	assert.Equal(t, []string{"2024-03-05T09:07:01.042Z"}, got["createdAt"])
	assert.Equal(t, []string{"true"}, got["loggedIn"])
	assert.Equal(t, []string{"false"}, got["hasMicrochip"])
	assert.Equal(t, []string{"null"}, got["selectedVet"])
	assert.Equal(t, []string{"null"}, got["selectedClinic"])
	assert.Equal(t, []string{`[{"name":"Dr. A","number":"1"}]`}, got["vetList"])
	assert.Equal(t, []string{`[]`}, got["clinicList"])
	assert.Equal(t, []string{""}, got["weight"])
}

func TestEnvelope_FieldsRepeatedEncoding(t *testing.T) {
	env := Build(Request{
		Revision:  mustRevision(t, "basic"),
		Form:      completeForm(),
		Directory: directory.Default(),
	}, fixedNow)

	fields, err := env.Fields(revision.EncodingRepeated)
	require.NoError(t, err)

	got := fieldMap(fields)
	assert.Equal(t, []string{
		`{"name":"Antonio","number":"001"}`,
		`{"name":"Miguel","number":"002"}`,
		`{"name":"Dra. Ana López","number":"003"}`,
	}, got["vetList"])
	assert.Equal(t, []string{`{"id":"001","address":"C/ lafuente, 32"}`}, got["selectedClinic"])
	assert.Equal(t, []string{`{"id":"001","address":"C/ lafuente, 32"}`}, got["clinicList"])
	assert.NotContains(t, got, "breed")
}
