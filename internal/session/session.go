// Package session authenticates a clinician against the login webhook and
// returns the directory the session works with.
//
// The exchange is a bare credential POST with no token: authentication means
// the endpoint answered with success. Login never blocks the clinician on a
// partial directory. A missing or empty collection falls back to the
// built-in list for that collection.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/intake/internal/apperr"
	"github.com/five82/intake/internal/directory"
	"github.com/five82/intake/internal/revision"
	"github.com/five82/intake/internal/webhook"
)

const op = "login"

// Credentials are held in memory for the lifetime of a session only.
type Credentials struct {
	Identifier string
	Secret     string
}

// Missing lists the credential fields that are empty or whitespace only.
func (c Credentials) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.Identifier) == "" {
		missing = append(missing, "identifier")
	}
	if strings.TrimSpace(c.Secret) == "" {
		missing = append(missing, "secret")
	}
	return missing
}

// Gate performs logins.
type Gate struct {
	poster   webhook.Poster
	loginURL string
	source   revision.DirectorySource
	logger   *zap.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithDirectorySource selects whether the response body feeds the directory.
func WithDirectorySource(source revision.DirectorySource) Option {
	return func(g *Gate) {
		g.source = source
	}
}

// NewGate builds a gate posting to loginURL.
func NewGate(poster webhook.Poster, loginURL string, opts ...Option) *Gate {
	g := &Gate{
		poster:   poster,
		loginURL: loginURL,
		source:   revision.DirectoryLogin,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login authenticates creds and returns the session directory. The fields
// are sent exactly as typed.
func (g *Gate) Login(ctx context.Context, creds Credentials) (directory.Directory, error) {
	if missing := creds.Missing(); len(missing) > 0 {
		return directory.Directory{}, apperr.Validation(op, missing...)
	}

	started := time.Now()
	resp, err := g.poster.PostForm(ctx, g.loginURL, []webhook.Field{
		{Name: "email", Value: creds.Identifier},
		{Name: "password", Value: creds.Secret},
	})
	if err != nil {
		g.logger.Warn("login request failed", zap.Error(err))
		return directory.Directory{}, apperr.Connectivity(op, err)
	}
	if !resp.OK() {
		g.logger.Info("login rejected", zap.Int("status", resp.Status))
		return directory.Directory{}, apperr.Auth(op, resp.Status, "credentials rejected")
	}

	body, err := decodeResponse(resp.Body)
	if err != nil {
		g.logger.Warn("login response unreadable", zap.Int("status", resp.Status), zap.Error(err))
		return directory.Directory{}, apperr.Protocol(op, err)
	}
	if body.Success != nil && !*body.Success {
		g.logger.Info("login refused by endpoint", zap.Int("status", resp.Status))
		return directory.Directory{}, apperr.Auth(op, resp.Status, "login refused")
	}

	dir := directory.Default()
	if g.source == revision.DirectoryLogin {
		parsed := body.directory()
		if parsed.IsEmpty() {
			g.logger.Info("login response carried no directory, using built-in lists")
		}
		dir = parsed.WithFallbacks()
	}
	g.logger.Info("login succeeded",
		zap.Int("status", resp.Status),
		zap.Int("veterinarians", len(dir.Veterinarians)),
		zap.Int("clinics", len(dir.Clinics)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return dir, nil
}

type loginResponse struct {
	Success *bool     `json:"success"`
	Data    loginData `json:"data"`
}

type loginData struct {
	Employees      *employeeSet `json:"empleados"`
	Locations      *locationSet `json:"ubicaciones"`
	EmployeesAlias *employeeSet `json:"employees"`
	LocationsAlias *locationSet `json:"locations"`
}

type employeeSet struct {
	Records      []employee `json:"registros"`
	RecordsAlias []employee `json:"records"`
}

type locationSet struct {
	Records      []location `json:"registros"`
	RecordsAlias []location `json:"records"`
}

type employee struct {
	ID        looseString `json:"ID"`
	Name      looseString `json:"Nombre"`
	IDAlias   looseString `json:"id"`
	NameAlias looseString `json:"name"`
}

type location struct {
	ID           looseString `json:"ID"`
	Address      looseString `json:"Direccion"`
	IDAlias      looseString `json:"id"`
	AddressAlias looseString `json:"address"`
}

// looseString accepts JSON strings and numbers.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = looseString(num.String())
	return nil
}

// decodeResponse accepts an object or a one-element array wrapping it.
func decodeResponse(raw []byte) (loginResponse, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var wrapped []loginResponse
		if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
			return loginResponse{}, err
		}
		if len(wrapped) == 0 {
			return loginResponse{}, errors.New("empty response array")
		}
		return wrapped[0], nil
	}
	var body loginResponse
	if err := json.Unmarshal([]byte(trimmed), &body); err != nil {
		return loginResponse{}, err
	}
	return body, nil
}

func (r loginResponse) directory() directory.Directory {
	var (
		vets      []directory.Veterinarian
		vetPos    []int
		clinics   []directory.Clinic
		clinicPos []int
	)
	for i, e := range r.Data.employees() {
		name := strings.TrimSpace(firstNonEmpty(e.Name, e.NameAlias))
		if name == "" {
			continue
		}
		id := strings.TrimSpace(firstNonEmpty(e.ID, e.IDAlias))
		vets = append(vets, directory.Veterinarian{ID: id, DisplayName: name})
		vetPos = append(vetPos, i+1)
	}
	for i, l := range r.Data.locations() {
		address := strings.TrimSpace(firstNonEmpty(l.Address, l.AddressAlias))
		if address == "" {
			continue
		}
		id := strings.TrimSpace(firstNonEmpty(l.ID, l.IDAlias))
		clinics = append(clinics, directory.Clinic{ID: id, Address: address})
		clinicPos = append(clinicPos, i+1)
	}

	var dir directory.Directory
	vetIDs := make([]string, len(vets))
	for i, v := range vets {
		vetIDs[i] = v.ID
	}
	for i, id := range uniqueIDs(vetIDs, vetPos) {
		if id == "" {
			continue
		}
		vets[i].ID = id
		dir.Veterinarians = append(dir.Veterinarians, vets[i])
	}
	clinicIDs := make([]string, len(clinics))
	for i, c := range clinics {
		clinicIDs[i] = c.ID
	}
	for i, id := range uniqueIDs(clinicIDs, clinicPos) {
		if id == "" {
			continue
		}
		clinics[i].ID = id
		dir.Clinics = append(dir.Clinics, clinics[i])
	}
	return dir
}

// uniqueIDs keeps the first record for each explicit id and returns "" for
// later records repeating it. Records without an id get their 1-based
// position in the response, or the next free number when that is taken.
func uniqueIDs(ids []string, positions []int) []string {
	out := make([]string, len(ids))
	taken := make(map[string]bool, len(ids))
	for i, id := range ids {
		if id != "" && !taken[id] {
			taken[id] = true
			out[i] = id
		}
	}
	for i, id := range ids {
		if id != "" {
			continue
		}
		n := positions[i]
		for taken[strconv.Itoa(n)] {
			n++
		}
		out[i] = strconv.Itoa(n)
		taken[out[i]] = true
	}
	return out
}

func (d loginData) employees() []employee {
	for _, set := range []*employeeSet{d.Employees, d.EmployeesAlias} {
		if set == nil {
			continue
		}
		if len(set.Records) > 0 {
			return set.Records
		}
		if len(set.RecordsAlias) > 0 {
			return set.RecordsAlias
		}
	}
	return nil
}

func (d loginData) locations() []location {
	for _, set := range []*locationSet{d.Locations, d.LocationsAlias} {
		if set == nil {
			continue
		}
		if len(set.Records) > 0 {
			return set.Records
		}
		if len(set.RecordsAlias) > 0 {
			return set.RecordsAlias
		}
	}
	return nil
}

func firstNonEmpty(values ...looseString) string {
	for _, v := range values {
		if strings.TrimSpace(string(v)) != "" {
			return string(v)
		}
	}
	return ""
}
