package validate

import (
	"locus/internal/domain/entity"
)

// civicAddrEntry maps one canonical civicAddress element code to its
// friendly name. Required entries must be present for a civic address
// variable list to validate; required-ness is taxonomy metadata, not a rule
// baked into the validator.
type civicAddrEntry struct {
	code     string
	name     string
	required bool
}

// Canonical civicAddress element codes and their synonyms. RD carries two
// synonyms (road, street); code lookups always render as "road".
var civicAddrEntries = []civicAddrEntry{
	{code: "A1", name: "state_province"},
	{code: "A2", name: "county_district"},
	{code: "A3", name: "city"},
	{code: "A4", name: "city_district"},
	{code: "A5", name: "neighborhood"},
	{code: "A6", name: "street_group"},
	{code: "ADDCODE", name: "additional_code"},
	{code: "BLD", name: "building"},
	{code: "country", name: "country", required: true},
	{code: "FLR", name: "floor"},
	{code: "HNO", name: "house_number"},
	{code: "HNS", name: "house_number_suffix"},
	{code: "LMK", name: "landmark"},
	{code: "LOC", name: "additional_location"},
	{code: "NAM", name: "location_name"},
	{code: "PC", name: "postal_code"},
	{code: "PCN", name: "postal_community"},
	{code: "PLC", name: "place_type"},
	{code: "POBOX", name: "po_box"},
	{code: "POD", name: "trailing_street_suffix"},
	{code: "POM", name: "road_post_modifier"},
	{code: "PRD", name: "leading_road_direction"},
	{code: "PRM", name: "road_pre_modifier"},
	{code: "RD", name: "road"},
	{code: "RD", name: "street"},
	{code: "RDBR", name: "road_branch"},
	{code: "RDSEC", name: "road_section"},
	{code: "RDSUBBR", name: "road_sub_branch"},
	{code: "ROOM", name: "room"},
	{code: "SEAT", name: "seat"},
	{code: "STS", name: "street_suffix"},
	{code: "UNIT", name: "unit"},
}

var (
	civicAddrByCode = map[string]string{}
	civicAddrByName = map[string]string{}
	civicAddrRequired []string
)

func init() {
	for _, e := range civicAddrEntries {
		if _, ok := civicAddrByCode[e.code]; !ok {
			civicAddrByCode[e.code] = e.name
		}
		civicAddrByName[e.name] = e.code
		if e.required {
			civicAddrRequired = append(civicAddrRequired, e.code)
		}
	}
}

// CivicAddrNameFromCode returns the friendly name for an official
// civicAddress code, or "" if the code is unknown. Lookups are
// case-sensitive on the stored forms.
func CivicAddrNameFromCode(code string) string {
	return civicAddrByCode[code]
}

// CivicAddrCodeFromName returns the official code for a civicAddress
// friendly name, or "" if the name is unknown.
func CivicAddrCodeFromName(name string) string {
	return civicAddrByName[name]
}

// CivicAddrResolveVariable resolves a token that may be either an official
// code or a friendly name to the canonical code, or "" if it is neither.
func CivicAddrResolveVariable(token string) string {
	if _, ok := civicAddrByCode[token]; ok {
		return token
	}

	return civicAddrByName[token]
}

// ValidateCivicAddrNames checks that every name in the list is a known
// civicAddress code or synonym. The lang entry is a language attribute, not
// an address element, and is exempt. This is the check for partial lists
// such as refinements, which overlay a base address and need not be complete
// on their own.
func ValidateCivicAddrNames(varlist entity.VarList) (Result, string) {
	for _, v := range varlist {
		if v.Name == "lang" {
			continue
		}
		if CivicAddrResolveVariable(v.Name) == "" {
			return ResultInvalidVarname, v.Name
		}
	}

	return ResultSuccess, ""
}

// ValidateCivicAddr checks that every name in the list is a known
// civicAddress code or synonym and that all taxonomy-mandatory entries are
// present. Returns the result and, on failure, the offending item.
func ValidateCivicAddr(varlist entity.VarList) (Result, string) {
	if result, item := ValidateCivicAddrNames(varlist); result != ResultSuccess {
		return result, item
	}

	for _, required := range civicAddrRequired {
		found := false
		for _, v := range varlist {
			if CivicAddrResolveVariable(v.Name) == required {
				found = true

				break
			}
		}
		if !found {
			return ResultMissingType, required
		}
	}

	return ResultSuccess, ""
}

// CivicAddrError is ValidateCivicAddr with the result folded into an error.
func CivicAddrError(varlist entity.VarList) error {
	result, item := ValidateCivicAddr(varlist)

	return resultError(result, item)
}
