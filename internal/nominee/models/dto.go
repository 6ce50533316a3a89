package models

import (
	"time"

	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

// NomineeDTO is the upstream wire form of a nominee. The wire flattens the
// guardian sub-record into prefixed snake_case fields; the mapping to and
// from the domain entity is total and reversible so records round-trip
// losslessly through the upstream API.
type NomineeDTO struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	Relationship    string `json:"relationship"`
	DateOfBirth     string `json:"date_of_birth"`
	Allocation      int    `json:"allocation_percent"`
	PAN             string `json:"pan,omitempty"`
	Email           string `json:"email,omitempty"`
	Mobile          string `json:"mobile,omitempty"`
	Address         string `json:"address,omitempty"`
	PinCode         string `json:"pin_code,omitempty"`
	GuardianName    string `json:"guardian_name,omitempty"`
	GuardianEmail   string `json:"guardian_email,omitempty"`
	GuardianPAN     string `json:"guardian_pan,omitempty"`
	GuardianAddress string `json:"guardian_address,omitempty"`
	GuardianPinCode string `json:"guardian_pin_code,omitempty"`
	OptedOut        bool   `json:"opted_out"`
}

// ToDTO converts a nominee to its wire form.
func (n *Nominee) ToDTO() NomineeDTO {
	dto := NomineeDTO{
		ID:           string(n.ID),
		Name:         n.Name,
		Relationship: string(n.Relationship),
		Allocation:   n.Allocation,
		PAN:          n.PAN,
		Email:        n.Email,
		Mobile:       n.Mobile,
		Address:      n.Address,
		PinCode:      n.PinCode,
		OptedOut:     n.OptedOut,
	}
	if !n.DateOfBirth.IsZero() {
		dto.DateOfBirth = n.DateOfBirth.Format(DateLayout)
	}
	if n.Guardian != nil {
		dto.GuardianName = n.Guardian.Name
		dto.GuardianEmail = n.Guardian.Email
		dto.GuardianPAN = n.Guardian.PAN
		dto.GuardianAddress = n.Guardian.Address
		dto.GuardianPinCode = n.Guardian.PinCode
	}
	return dto
}

// FromDTO converts a wire record back to the domain entity. The only
// parse that can fail is the date of birth; everything else is structural.
func FromDTO(dto NomineeDTO) (*Nominee, error) {
	n := &Nominee{
		ID:           domain.NomineeID(dto.ID),
		Name:         dto.Name,
		Relationship: Relationship(dto.Relationship),
		Allocation:   dto.Allocation,
		PAN:          dto.PAN,
		Email:        dto.Email,
		Mobile:       dto.Mobile,
		Address:      dto.Address,
		PinCode:      dto.PinCode,
		OptedOut:     dto.OptedOut,
	}
	if dto.DateOfBirth != "" {
		dob, err := time.Parse(DateLayout, dto.DateOfBirth)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid date_of_birth in nominee record")
		}
		n.DateOfBirth = dob
	}
	guardian := &Guardian{
		Name:    dto.GuardianName,
		Email:   dto.GuardianEmail,
		PAN:     dto.GuardianPAN,
		Address: dto.GuardianAddress,
		PinCode: dto.GuardianPinCode,
	}
	if !guardian.IsEmpty() {
		n.Guardian = guardian
	}
	return n, nil
}

// ToDTOs converts a batch preserving order. Drafts and committed records
// share one wire form; presence of an id marks an update.
func ToDTOs(nominees []*Nominee) []NomineeDTO {
	dtos := make([]NomineeDTO, 0, len(nominees))
	for _, n := range nominees {
		dtos = append(dtos, n.ToDTO())
	}
	return dtos
}

// FromDTOs converts a batch, failing on the first bad record.
func FromDTOs(dtos []NomineeDTO) ([]*Nominee, error) {
	nominees := make([]*Nominee, 0, len(dtos))
	for _, dto := range dtos {
		n, err := FromDTO(dto)
		if err != nil {
			return nil, err
		}
		nominees = append(nominees, n)
	}
	return nominees, nil
}
