package types

import "strings"

// MaxResults caps every Find. There is no pagination; callers narrow the
// criteria instead.
const MaxResults = 30

// OccupationUnspecified is shown in place of an empty occupation.
const OccupationUnspecified = "unspecified"

// Column names of the padron table. Criteria keys use the same names.
const (
	FieldNationalID       = "dni"
	FieldLastName         = "lastname"
	FieldFirstName        = "names"
	FieldClass            = "clase"
	FieldAddress          = "address"
	FieldAlternateAddress = "alternate_address"
	FieldLocality         = "locality"
	FieldProvince         = "province"
	FieldOccupation       = "work"
)

// Record is one registry entry. ID is assigned by storage and is never set by
// callers; NationalID is the business key used by Save.
type Record struct {
	ID               int64  `json:"id,omitempty" db:"id"`
	NationalID       string `json:"dni" db:"dni"`
	LastName         string `json:"lastname" db:"lastname"`
	FirstName        string `json:"names" db:"names"`
	Class            string `json:"clase" db:"clase"`
	Address          string `json:"address" db:"address"`
	AlternateAddress string `json:"alternate_address" db:"alternate_address"`
	Locality         string `json:"locality" db:"locality"`
	Province         string `json:"province" db:"province"`
	Occupation       string `json:"work" db:"work"`
}

// Trimmed returns a copy of r with surrounding whitespace removed from every
// text field.
func (r Record) Trimmed() Record {
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.LastName = strings.TrimSpace(r.LastName)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.Class = strings.TrimSpace(r.Class)
	r.Address = strings.TrimSpace(r.Address)
	r.AlternateAddress = strings.TrimSpace(r.AlternateAddress)
	r.Locality = strings.TrimSpace(r.Locality)
	r.Province = strings.TrimSpace(r.Province)
	r.Occupation = strings.TrimSpace(r.Occupation)
	return r
}

// Validate reports ErrInvalidRecord when the record has no national ID.
func (r Record) Validate() error {
	if strings.TrimSpace(r.NationalID) == "" {
		return ErrInvalidRecord
	}
	return nil
}

// DisplayOccupation returns the occupation or OccupationUnspecified when it
// is empty. Storage keeps the empty value.
func (r Record) DisplayOccupation() string {
	if strings.TrimSpace(r.Occupation) == "" {
		return OccupationUnspecified
	}
	return r.Occupation
}

// Criteria maps a field name to a filter value. Empty or whitespace-only
// values place no constraint on their field.
type Criteria map[string]string

// Active returns the criteria with blank values dropped and the remaining
// values trimmed.
func (c Criteria) Active() Criteria {
	active := make(Criteria, len(c))
	for k, v := range c {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		active[k] = v
	}
	return active
}

// IsEmpty reports whether no criterion carries a value.
func (c Criteria) IsEmpty() bool {
	for _, v := range c {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ImportResult summarizes an Import run.
type ImportResult struct {
	Read     int `json:"read"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}
