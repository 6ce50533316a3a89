package models

import (
	"strconv"
	"strings"
	"time"

	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

// This file contains pure domain models for nominee management: entities
// that should not depend on transport or HTTP-specific concerns.

// DateLayout is the calendar-date form used for dates of birth on the wire
// and in field updates.
const DateLayout = "2006-01-02"

// Guardian holds the contact details required when a nominee is a minor.
type Guardian struct {
	Name    string
	Email   string
	PAN     string
	Address string
	PinCode string
}

// IsEmpty reports whether no guardian field has been set.
func (g *Guardian) IsEmpty() bool {
	return g == nil || (g.Name == "" && g.Email == "" && g.PAN == "" && g.Address == "" && g.PinCode == "")
}

// Nominee represents a committed, server-known beneficiary record.
// Created by a successful commit; mutated only by a successful commit that
// includes its id; never deleted, only superseded or marked opted-out.
// This is a pure domain entity - use NomineeDTO for the upstream wire form.
type Nominee struct {
	ID           domain.NomineeID
	Name         string
	Relationship Relationship
	DateOfBirth  time.Time
	Allocation   int // integer percent of holdings, 1-100

	// Optional contact/identity fields
	PAN     string
	Email   string
	Mobile  string
	Address string
	PinCode string

	// Guardian is required only while the nominee is a minor.
	Guardian *Guardian

	OptedOut bool
}

// IsActive reports whether the nominee counts toward the allocation
// invariant and the active-nominee limit.
func (n *Nominee) IsActive() bool {
	return !n.OptedOut
}

// Draft is a locally-held, not-yet-committed nominee record being composed
// or edited. It carries no persisted id unless it edits an existing nominee.
type Draft struct {
	Nominee

	// IsMinor is derived from DateOfBirth and recomputed whenever the
	// date of birth changes.
	IsMinor bool

	// EditsCommitted marks a draft seeded from an existing committed
	// nominee. Date of birth and allocation are immutable on such drafts;
	// only name, relationship, and contact fields may change.
	EditsCommitted bool
}

// NewDraft seeds a blank draft for composing a new nominee.
func NewDraft() *Draft {
	return &Draft{}
}

// DraftOf seeds a draft from a committed nominee for editing.
func DraftOf(n *Nominee, now time.Time) *Draft {
	d := &Draft{
		Nominee:        *n,
		EditsCommitted: true,
	}
	if n.Guardian != nil {
		guardian := *n.Guardian
		d.Guardian = &guardian
	}
	d.RecomputeMinor(now)
	return d
}

// RecomputeMinor refreshes the derived minor flag against the given time.
func (d *Draft) RecomputeMinor(now time.Time) {
	d.IsMinor = !d.DateOfBirth.IsZero() && domain.IsMinor(d.DateOfBirth, now)
}

// Field names a single editable draft field. Values match the wire names so
// clients and validators speak the same vocabulary.
type Field string

const (
	FieldName            Field = "name"
	FieldRelationship    Field = "relationship"
	FieldDateOfBirth     Field = "date_of_birth"
	FieldAllocation      Field = "allocation_percent"
	FieldPAN             Field = "pan"
	FieldEmail           Field = "email"
	FieldMobile          Field = "mobile"
	FieldAddress         Field = "address"
	FieldPinCode         Field = "pin_code"
	FieldGuardianName    Field = "guardian_name"
	FieldGuardianEmail   Field = "guardian_email"
	FieldGuardianPAN     Field = "guardian_pan"
	FieldGuardianAddress Field = "guardian_address"
	FieldGuardianPinCode Field = "guardian_pin_code"
)

// Apply sets a single draft field from its string form, recomputing the
// minor flag when the date of birth changes. Date of birth and allocation
// are rejected on drafts editing a committed nominee.
func (d *Draft) Apply(field Field, value string, now time.Time) error {
	value = strings.TrimSpace(value)

	switch field {
	case FieldName:
		d.Name = value
	case FieldRelationship:
		d.Relationship = Relationship(value)
	case FieldDateOfBirth:
		if d.EditsCommitted {
			return dErrors.New(dErrors.CodeForbidden, "date of birth cannot be changed for an existing nominee")
		}
		dob, err := time.Parse(DateLayout, value)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "date_of_birth must be in YYYY-MM-DD form")
		}
		d.DateOfBirth = dob
		d.RecomputeMinor(now)
	case FieldAllocation:
		if d.EditsCommitted {
			return dErrors.New(dErrors.CodeForbidden, "allocation cannot be changed for an existing nominee")
		}
		allocation, err := strconv.Atoi(value)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "allocation_percent must be a whole number")
		}
		d.Allocation = allocation
	case FieldPAN:
		d.PAN = strings.ToUpper(value)
	case FieldEmail:
		d.Email = value
	case FieldMobile:
		d.Mobile = value
	case FieldAddress:
		d.Address = value
	case FieldPinCode:
		d.PinCode = value
	case FieldGuardianName, FieldGuardianEmail, FieldGuardianPAN, FieldGuardianAddress, FieldGuardianPinCode:
		d.applyGuardian(field, value)
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown field: "+string(field))
	}
	return nil
}

func (d *Draft) applyGuardian(field Field, value string) {
	if d.Guardian == nil {
		d.Guardian = &Guardian{}
	}
	switch field {
	case FieldGuardianName:
		d.Guardian.Name = value
	case FieldGuardianEmail:
		d.Guardian.Email = value
	case FieldGuardianPAN:
		d.Guardian.PAN = strings.ToUpper(value)
	case FieldGuardianAddress:
		d.Guardian.Address = value
	case FieldGuardianPinCode:
		d.Guardian.PinCode = value
	}
	if d.Guardian.IsEmpty() {
		d.Guardian = nil
	}
}

// ActiveCount returns how many nominees in the list count toward the
// active-nominee limit.
func ActiveCount(nominees []*Nominee) int {
	count := 0
	for _, n := range nominees {
		if n.IsActive() {
			count++
		}
	}
	return count
}
