package catalog

import "strings"

// Attribute identifies one of the settable POLICY columns. The CREATED
// column is stamped by the store at creation time and is deliberately not an
// Attribute.
type Attribute int

const (
	attrInvalid Attribute = iota
	AttrType
	AttrLabel
	AttrJurisdiction
	AttrLegalCode
	AttrHasVersion
	AttrLanguage
	AttrSeeAlso
	AttrSameAs
	AttrComment
	AttrLogo
	AttrStatus
	AttrCreator
)

// Attributes lists every settable policy attribute.
var Attributes = []Attribute{
	AttrType, AttrLabel, AttrJurisdiction, AttrLegalCode, AttrHasVersion,
	AttrLanguage, AttrSeeAlso, AttrSameAs, AttrComment, AttrLogo,
	AttrStatus, AttrCreator,
}

// ParseAttribute resolves an attribute name, case-insensitively, to its
// Attribute. Unknown names return an InvalidAttributeError.
func ParseAttribute(name string) (Attribute, error) {
	switch strings.ToUpper(name) {
	case "TYPE":
		return AttrType, nil
	case "LABEL":
		return AttrLabel, nil
	case "JURISDICTION":
		return AttrJurisdiction, nil
	case "LEGAL_CODE":
		return AttrLegalCode, nil
	case "HAS_VERSION":
		return AttrHasVersion, nil
	case "LANGUAGE":
		return AttrLanguage, nil
	case "SEE_ALSO":
		return AttrSeeAlso, nil
	case "SAME_AS":
		return AttrSameAs, nil
	case "COMMENT":
		return AttrComment, nil
	case "LOGO":
		return AttrLogo, nil
	case "STATUS":
		return AttrStatus, nil
	case "CREATOR":
		return AttrCreator, nil
	default:
		return attrInvalid, NewInvalidAttributeError(name)
	}
}

// Valid reports whether a is one of the defined attributes.
func (a Attribute) Valid() bool {
	return a > attrInvalid && a <= AttrCreator
}

// Column returns the POLICY column name for the attribute. It returns an
// empty string for invalid attributes; the store rejects those before
// building any SQL.
func (a Attribute) Column() string {
	switch a {
	case AttrType:
		return "TYPE"
	case AttrLabel:
		return "LABEL"
	case AttrJurisdiction:
		return "JURISDICTION"
	case AttrLegalCode:
		return "LEGAL_CODE"
	case AttrHasVersion:
		return "HAS_VERSION"
	case AttrLanguage:
		return "LANGUAGE"
	case AttrSeeAlso:
		return "SEE_ALSO"
	case AttrSameAs:
		return "SAME_AS"
	case AttrComment:
		return "COMMENT"
	case AttrLogo:
		return "LOGO"
	case AttrStatus:
		return "STATUS"
	case AttrCreator:
		return "CREATOR"
	default:
		return ""
	}
}

// String returns the column name, which doubles as the attribute's
// canonical spelling.
func (a Attribute) String() string {
	if !a.Valid() {
		return "INVALID"
	}
	return a.Column()
}
