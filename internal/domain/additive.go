package domain

// AdditiveStatus is the regulatory status of an additive in the reference table
type AdditiveStatus string

const (
	StatusPermitted  AdditiveStatus = "permitted"
	StatusRestricted AdditiveStatus = "restricted"
	StatusBanned     AdditiveStatus = "banned"
)

// Valid reports whether s is one of the statuses a reference record may carry
func (s AdditiveStatus) Valid() bool {
	switch s {
	case StatusPermitted, StatusRestricted, StatusBanned:
		return true
	}
	return false
}

// AdditiveRecord is one entry of the additive reference table.
// InsNumber keeps the code exactly as written in the source file; Code is its normalized form.
type AdditiveRecord struct {
	InsNumber string         `json:"ins_number" yaml:"ins_number"`
	Name      string         `json:"name" yaml:"name"`
	Status    AdditiveStatus `json:"status" yaml:"status"`
	MaxPPM    *float64       `json:"max_ppm,omitempty" yaml:"max_ppm,omitempty"`
	AllowedIn []string       `json:"allowed_in" yaml:"allowed_in"`
	Notes     *string        `json:"notes,omitempty" yaml:"notes,omitempty"`

	Code string `json:"-" yaml:"-"`
}

// AllowedEverywhere reports whether the record places no food category restriction
func (r *AdditiveRecord) AllowedEverywhere() bool {
	return len(r.AllowedIn) == 0
}
