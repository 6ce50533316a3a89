// Package validate holds the pure record-level and allocation-sum checks for
// nominee drafts. Functions return field-keyed error maps and never call the
// network; an empty map means valid.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"folio/internal/nominee/models"
	domain "folio/pkg/domain"
)

// FieldErrors maps a wire field name to a human-readable problem.
type FieldErrors map[string]string

// Valid reports whether no field failed.
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// KeyTotal carries the single global allocation-sum error.
const KeyTotal = "total"

const maxNameLength = 100

var (
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	mobilePattern  = regexp.MustCompile(`^[0-9]{10}$`)
	pinCodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// SelfRef identifies the record under edit inside the combined set so
// cross-record uniqueness checks never compare a record against itself.
type SelfRef struct {
	// DraftIndex is the position in the pending draft list, or -1 when the
	// record is not a pending draft.
	DraftIndex int
	// NomineeID is set when the record edits a committed nominee.
	NomineeID domain.NomineeID
}

// NoSelf marks a fresh record that exists nowhere in the combined set yet.
func NoSelf() SelfRef {
	return SelfRef{DraftIndex: -1}
}

// AtPendingIndex marks a record editing the pending draft at the given index.
func AtPendingIndex(i int) SelfRef {
	return SelfRef{DraftIndex: i}
}

// OfCommitted marks a record editing the committed nominee with the given id.
func OfCommitted(nomineeID domain.NomineeID) SelfRef {
	return SelfRef{DraftIndex: -1, NomineeID: nomineeID}
}

// Record checks a single candidate draft for field-level validity and for
// duplicate identity fields against every other record in the combined
// committed-plus-draft set, excluding the record itself per self.
func Record(d *models.Draft, existing []*models.Nominee, drafts []*models.Draft, self SelfRef) FieldErrors {
	errs := FieldErrors{}

	checkIdentity(d, errs)
	checkGuardian(d, errs)
	checkDuplicates(d, existing, drafts, self, errs)

	return errs
}

func checkIdentity(d *models.Draft, errs FieldErrors) {
	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "name is required"
	} else if len(d.Name) > maxNameLength {
		errs["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}

	if d.Relationship == "" {
		errs["relationship"] = "relationship is required"
	} else if !d.Relationship.IsValid() {
		errs["relationship"] = "relationship is not a recognized category"
	}

	if d.DateOfBirth.IsZero() {
		errs["date_of_birth"] = "date of birth is required"
	}

	if d.Allocation < 1 || d.Allocation > 100 {
		errs["allocation_percent"] = "allocation must be between 1 and 100"
	}

	if d.PAN != "" && !panPattern.MatchString(d.PAN) {
		errs["pan"] = "pan must match the format ABCDE1234F"
	}
	if d.Email != "" && !emailPattern.MatchString(d.Email) {
		errs["email"] = "email must be a valid address"
	}
	if d.Mobile != "" && !mobilePattern.MatchString(d.Mobile) {
		errs["mobile"] = "mobile must be a 10-digit number"
	}
	if d.PinCode != "" && !pinCodePattern.MatchString(d.PinCode) {
		errs["pin_code"] = "pin code must be a 6-digit number"
	}
}

func checkGuardian(d *models.Draft, errs FieldErrors) {
	if d.IsMinor {
		if d.Guardian == nil || strings.TrimSpace(d.Guardian.Name) == "" {
			errs["guardian_name"] = "guardian details are required for a minor nominee"
			return
		}
	} else if d.Guardian != nil {
		errs["guardian_name"] = "guardian details are only applicable for minor nominees"
		return
	}

	if d.Guardian == nil {
		return
	}
	if d.Guardian.PAN != "" && !panPattern.MatchString(d.Guardian.PAN) {
		errs["guardian_pan"] = "guardian pan must match the format ABCDE1234F"
	}
	if d.Guardian.Email != "" && !emailPattern.MatchString(d.Guardian.Email) {
		errs["guardian_email"] = "guardian email must be a valid address"
	}
	if d.Guardian.PinCode != "" && !pinCodePattern.MatchString(d.Guardian.PinCode) {
		errs["guardian_pin_code"] = "guardian pin code must be a 6-digit number"
	}
}

// checkDuplicates rejects PAN/email/mobile collisions with every other
// record. PAN comparison is uppercase-normalized, email case-insensitive.
func checkDuplicates(d *models.Draft, existing []*models.Nominee, drafts []*models.Draft, self SelfRef, errs FieldErrors) {
	for _, other := range existing {
		if !self.NomineeID.IsNil() && other.ID == self.NomineeID {
			continue
		}
		markCollisions(d, other, errs)
	}
	for i, other := range drafts {
		if i == self.DraftIndex {
			continue
		}
		markCollisions(d, &other.Nominee, errs)
	}
}

func markCollisions(d *models.Draft, other *models.Nominee, errs FieldErrors) {
	if _, seen := errs["pan"]; !seen && d.PAN != "" &&
		strings.EqualFold(strings.TrimSpace(d.PAN), strings.TrimSpace(other.PAN)) {
		errs["pan"] = "pan is already used by another nominee"
	}
	if _, seen := errs["email"]; !seen && d.Email != "" &&
		strings.EqualFold(strings.TrimSpace(d.Email), strings.TrimSpace(other.Email)) {
		errs["email"] = "email is already used by another nominee"
	}
	if _, seen := errs["mobile"]; !seen && d.Mobile != "" &&
		strings.TrimSpace(d.Mobile) == strings.TrimSpace(other.Mobile) {
		errs["mobile"] = "mobile is already used by another nominee"
	}
}

// AllocationTotal sums allocations over the union of non-opted-out committed
// nominees and pending drafts, excluding committed records superseded by a
// pending edit. The sum must be exactly 100. This check runs only at commit
// time so totals may drift while the user is still composing.
func AllocationTotal(existing []*models.Nominee, drafts []*models.Draft) FieldErrors {
	edited := make(map[domain.NomineeID]struct{}, len(drafts))
	total := 0
	for _, d := range drafts {
		total += d.Allocation
		if !d.ID.IsNil() {
			edited[d.ID] = struct{}{}
		}
	}
	for _, n := range existing {
		if !n.IsActive() {
			continue
		}
		if _, superseded := edited[n.ID]; superseded {
			continue
		}
		total += n.Allocation
	}

	if total == 100 {
		return FieldErrors{}
	}
	return FieldErrors{
		KeyTotal: fmt.Sprintf("Total allocation must be exactly 100%%. Current: %d%%", total),
	}
}
