package garage

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFormatAttribute(t *testing.T) {
	testCases := []struct {
		attributeId string
		value       string
		expected    string
		ok          bool
	}{
		// placeholder/unset sentinels and unknown booleans are dropped
		{attributeId: "any", value: "0", ok: false},
		{attributeId: "any", value: "", ok: false},
		{attributeId: "any", value: "   ", ok: false},
		{attributeId: "any", value: "true", ok: false},
		{attributeId: "any", value: "false", ok: false},
		// the known mileage id gets grouped digits and a unit
		{attributeId: MileageAttributeId, value: "15000", expected: "15,000 miles", ok: true},
		{attributeId: MileageAttributeId, value: "900", expected: "900 miles", ok: true},
		// non-numeric mileage values pass through untouched
		{attributeId: MileageAttributeId, value: "15k-ish", expected: "15k-ish", ok: true},
		// everything else is shown verbatim, never reformatted
		{attributeId: "any", value: "Pierce", expected: "Pierce", ok: true},
		{attributeId: "any", value: "1500 GPM", expected: "1500 GPM", ok: true},
	}

	for _, test := range testCases {
		got, ok := FormatAttribute(test.attributeId, test.value)
		require.Equal(t, test.ok, ok, "value=%q", test.value)
		if ok {
			require.Equal(t, test.expected, got, "value=%q", test.value)
		}
	}
}

func TestFormatSpecsDeduplicates(t *testing.T) {
	specs := formatSpecs([]rawAttribute{
		{CategoryAttributeId: "a", Value: "Pierce"},
		{CategoryAttributeId: "b", Value: "pierce"},
		{CategoryAttributeId: "c", Value: "Enforcer"},
		{CategoryAttributeId: "d", Value: "0"},
		{CategoryAttributeId: "e", Value: "true"},
	})
	require.Equal(t, "Pierce • Enforcer", specs)
}

func TestYearFromTitle(t *testing.T) {
	testCases := []struct {
		title    string
		expected int
	}{
		{title: "2009 Spartan Gladiator", expected: 2009},
		{title: "NEW BUILD 2024 RAM 5500", expected: 2024},
		{title: "Pierce Enforcer Pumper", expected: 0},
		// 1899 and 2150 are not year-shaped per the 1900-2099 window
		{title: "Antique 1899 steamer", expected: 0},
		{title: "Model 2150 ladder", expected: 0},
		{title: "1987 E-One 1500GPM", expected: 1987},
	}

	for _, test := range testCases {
		got := yearFromTitle(test.title)
		diff := cmp.Diff(test.expected, got)
		if diff != "" {
			t.Fatalf("title %q: %s", test.title, diff)
		}
	}
}

func TestMileageFromAttributes(t *testing.T) {
	require.Equal(t, 15000, mileageFromAttributes([]rawAttribute{
		{CategoryAttributeId: MileageAttributeId, Value: "15000"},
	}))
	// only purely numeric values count
	require.Equal(t, 0, mileageFromAttributes([]rawAttribute{
		{CategoryAttributeId: MileageAttributeId, Value: "15,000 miles"},
	}))
	require.Equal(t, 0, mileageFromAttributes([]rawAttribute{
		{CategoryAttributeId: "other", Value: "15000"},
	}))
}

func TestModelFromAttributes(t *testing.T) {
	// the known id wins over the heuristic
	require.Equal(t, "Enforcer", modelFromAttributes([]rawAttribute{
		{CategoryAttributeId: "other", Value: "Quint"},
		{CategoryAttributeId: ModelAttributeId, Value: "Enforcer"},
	}))

	// best-effort fallback: first alphabetic value of plausible length
	require.Equal(t, "Gladiator", modelFromAttributes([]rawAttribute{
		{CategoryAttributeId: "a", Value: "true"},
		{CategoryAttributeId: "b", Value: "15000"},
		{CategoryAttributeId: "c", Value: "Gladiator"},
	}))

	require.Equal(t, "", modelFromAttributes(nil))
}
