package models

// Relationship categorizes how a nominee relates to the account holder.
type Relationship string

const (
	RelationshipSpouse         Relationship = "SPOUSE"
	RelationshipSon            Relationship = "SON"
	RelationshipDaughter       Relationship = "DAUGHTER"
	RelationshipFather         Relationship = "FATHER"
	RelationshipMother         Relationship = "MOTHER"
	RelationshipBrother        Relationship = "BROTHER"
	RelationshipSister         Relationship = "SISTER"
	RelationshipGrandson       Relationship = "GRANDSON"
	RelationshipGranddaughter  Relationship = "GRANDDAUGHTER"
	RelationshipGrandfather    Relationship = "GRANDFATHER"
	RelationshipGrandmother    Relationship = "GRANDMOTHER"
	RelationshipSonInLaw       Relationship = "SON_IN_LAW"
	RelationshipDaughterInLaw  Relationship = "DAUGHTER_IN_LAW"
	RelationshipFatherInLaw    Relationship = "FATHER_IN_LAW"
	RelationshipMotherInLaw    Relationship = "MOTHER_IN_LAW"
	RelationshipBrotherInLaw   Relationship = "BROTHER_IN_LAW"
	RelationshipSisterInLaw    Relationship = "SISTER_IN_LAW"
	RelationshipNephew         Relationship = "NEPHEW"
	RelationshipNiece          Relationship = "NIECE"
	RelationshipUncle          Relationship = "UNCLE"
	RelationshipAunt           Relationship = "AUNT"
	RelationshipOther          Relationship = "OTHER"
)

// relationships is the closed set of supported categories.
var relationships = map[Relationship]struct{}{
	RelationshipSpouse: {}, RelationshipSon: {}, RelationshipDaughter: {},
	RelationshipFather: {}, RelationshipMother: {}, RelationshipBrother: {},
	RelationshipSister: {}, RelationshipGrandson: {}, RelationshipGranddaughter: {},
	RelationshipGrandfather: {}, RelationshipGrandmother: {}, RelationshipSonInLaw: {},
	RelationshipDaughterInLaw: {}, RelationshipFatherInLaw: {}, RelationshipMotherInLaw: {},
	RelationshipBrotherInLaw: {}, RelationshipSisterInLaw: {}, RelationshipNephew: {},
	RelationshipNiece: {}, RelationshipUncle: {}, RelationshipAunt: {},
	RelationshipOther: {},
}

func (r Relationship) IsValid() bool {
	_, ok := relationships[r]
	return ok
}

func (r Relationship) String() string {
	return string(r)
}
