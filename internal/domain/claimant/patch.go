package claimant

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

type Field string

const (
	FieldName           Field = "name"
	FieldEmail          Field = "email"
	FieldPhoneNumber    Field = "phone_number"
	FieldNotes          Field = "notes"
	FieldTargetLocation Field = "target_location"
	FieldSearchKeywords Field = "search_keywords"
)

// Fields lists every patchable field in column order.
var Fields = []Field{
	FieldName,
	FieldEmail,
	FieldPhoneNumber,
	FieldNotes,
	FieldTargetLocation,
	FieldSearchKeywords,
}

var ErrInvalidPatch = errors.New("invalid claimant patch")

// Patch holds the fields a caller supplied. A nil pointer leaves the field
// alone; for optional fields an empty string clears it.
type Patch struct {
	Name           *string `mapstructure:"name"`
	Email          *string `mapstructure:"email"`
	PhoneNumber    *string `mapstructure:"phone_number"`
	Notes          *string `mapstructure:"notes"`
	TargetLocation *string `mapstructure:"target_location"`
	SearchKeywords *string `mapstructure:"search_keywords"`
}

func (p Patch) value(f Field) *string {
	switch f {
	case FieldName:
		return p.Name
	case FieldEmail:
		return p.Email
	case FieldPhoneNumber:
		return p.PhoneNumber
	case FieldNotes:
		return p.Notes
	case FieldTargetLocation:
		return p.TargetLocation
	case FieldSearchKeywords:
		return p.SearchKeywords
	default:
		return nil
	}
}

// IsEmpty reports whether no field was supplied.
func (p Patch) IsEmpty() bool {
	for _, f := range Fields {
		if p.value(f) != nil {
			return false
		}
	}
	return true
}

// Validate rejects clearing the required fields.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidPatch)
	}
	if p.Email != nil && strings.TrimSpace(*p.Email) == "" {
		return fmt.Errorf("%w: email must not be empty", ErrInvalidPatch)
	}
	return nil
}

// Apply writes the supplied fields into c and returns the fields whose value
// actually changed. UpdatedAt is refreshed only when something changed.
func (p Patch) Apply(c *Claimant, now time.Time) []Field {
	if c == nil {
		return nil
	}
	changed := make([]Field, 0, len(Fields))
	for _, f := range Fields {
		v := p.value(f)
		if v == nil {
			continue
		}
		switch f {
		case FieldName:
			if setRequired(&c.Name, *v) {
				changed = append(changed, f)
			}
		case FieldEmail:
			if setRequired(&c.Email, NormalizeEmail(*v)) {
				changed = append(changed, f)
			}
		case FieldPhoneNumber:
			if setOptional(&c.PhoneNumber, *v) {
				changed = append(changed, f)
			}
		case FieldNotes:
			if setOptional(&c.Notes, *v) {
				changed = append(changed, f)
			}
		case FieldTargetLocation:
			if setOptional(&c.TargetLocation, *v) {
				changed = append(changed, f)
			}
		case FieldSearchKeywords:
			if setOptional(&c.SearchKeywords, *v) {
				changed = append(changed, f)
			}
		}
	}
	if len(changed) > 0 {
		c.UpdatedAt = now
	}
	return changed
}

func setRequired(dst *string, v string) bool {
	v = strings.TrimSpace(v)
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func setOptional(dst **string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		if *dst == nil {
			return false
		}
		*dst = nil
		return true
	}
	if *dst != nil && **dst == v {
		return false
	}
	*dst = &v
	return true
}

// PatchFromMap decodes a generic JSON object into a Patch. Unknown keys and
// non-string values are rejected; a null value clears an optional field.
func PatchFromMap(in map[string]any) (Patch, error) {
	var p Patch
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &p,
	})
	if err != nil {
		return Patch{}, err
	}

	nulls := make([]string, 0)
	clean := make(map[string]any, len(in))
	for k, v := range in {
		if v == nil {
			nulls = append(nulls, k)
			continue
		}
		if _, ok := v.(string); !ok {
			return Patch{}, fmt.Errorf("%w: field %q must be a string", ErrInvalidPatch, k)
		}
		clean[k] = v
	}

	if err := dec.Decode(clean); err != nil {
		return Patch{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	sort.Strings(nulls)
	for _, k := range nulls {
		empty := ""
		switch Field(k) {
		case FieldPhoneNumber:
			p.PhoneNumber = &empty
		case FieldNotes:
			p.Notes = &empty
		case FieldTargetLocation:
			p.TargetLocation = &empty
		case FieldSearchKeywords:
			p.SearchKeywords = &empty
		case FieldName, FieldEmail:
			return Patch{}, fmt.Errorf("%w: %s cannot be null", ErrInvalidPatch, k)
		default:
			return Patch{}, fmt.Errorf("%w: unknown field %q", ErrInvalidPatch, k)
		}
	}
	return p, nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
