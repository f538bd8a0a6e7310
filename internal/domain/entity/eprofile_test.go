package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEProfile() *EProfile {
	return &EProfile{
		ID:                 "desk",
		LocationReference:  "campus",
		Method:             "Manual",
		PIDFElement:        PIDFElementTuple,
		Action:             ActionAppend,
		GeolocationRouting: true,
		SendLocation:       false,
		Format:             FormatCivicAddress,
		LocationInfo: VarList{
			{Name: "country", Value: "US"},
			{Name: "A1", Value: "Ohio"},
		},
		EffectiveLocation: VarList{
			{Name: "country", Value: "US"},
			{Name: "A1", Value: "Ohio"},
			{Name: "FLR", Value: "2"},
		},
		UsageRules: VarList{{Name: "retransmission-allowed", Value: "no"}},
		Notes:      "east wing",
	}
}

func TestEProfileFieldValue(t *testing.T) {
	t.Parallel()

	eprofile := testEProfile()

	tests := []struct {
		field string
		want  string
	}{
		{field: "id", want: "desk"},
		{field: "location_reference", want: "campus"},
		{field: "method", want: "Manual"},
		{field: "geolocation_routing", want: "yes"},
		{field: "send_location", want: "no"},
		{field: "action", want: "append"},
		{field: "format", want: "civicAddress"},
		{field: "pidf_element", want: "tuple"},
		{field: "location_info", want: `country="US",A1="Ohio"`},
		{field: "effective_location", want: `country="US",A1="Ohio",FLR="2"`},
		{field: "usage_rules", want: `retransmission-allowed="no"`},
		{field: "notes", want: "east wing"},
	}

	for _, tt := range tests {
		got, err := eprofile.FieldValue(tt.field)
		require.NoError(t, err, tt.field)
		assert.Equal(t, tt.want, got, tt.field)
	}

	_, err := eprofile.FieldValue("no_such_field")
	assert.Error(t, err)
}

func TestEProfileCloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := testEProfile()
	dup := orig.Clone()
	dup.EffectiveLocation.Replace("FLR", "9")

	flr, _ := orig.EffectiveLocation.Get("FLR")
	assert.Equal(t, "2", flr)

	var nilEP *EProfile
	assert.Nil(t, nilEP.Clone())
}
