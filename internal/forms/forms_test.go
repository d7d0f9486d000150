package forms

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLocation() map[string]string {
	return map[string]string{
		"province_name": "Jawa Barat",
		"province_code": "32",
		"city_name":     "Bandung",
		"city_type":     "KOTA",
	}
}

func TestLocationForm_PopulationCoercion(t *testing.T) {
	t.Run("empty population persists null", func(t *testing.T) {
		raw := validLocation()
		raw["population"] = ""

		v, err := LocationForm.Bind(raw, false)
		require.NoError(t, err)

		pop, ok := v["population"]
		assert.True(t, ok, "population must be written")
		assert.Nil(t, pop)
	})

	t.Run("numeric population persists the integer", func(t *testing.T) {
		raw := validLocation()
		raw["population"] = "100000"

		v, err := LocationForm.Bind(raw, false)
		require.NoError(t, err)
		assert.Equal(t, int64(100000), v["population"])
	})

	t.Run("garbage population is rejected, not zeroed", func(t *testing.T) {
		raw := validLocation()
		raw["population"] = "lots"

		_, err := LocationForm.Bind(raw, false)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "population", verr.Fields[0].Field)
	})

	t.Run("negative population fails the check", func(t *testing.T) {
		raw := validLocation()
		raw["population"] = "-5"

		_, err := LocationForm.Bind(raw, false)
		assert.Error(t, err)
	})
}

func TestLocationForm_RequiredFields(t *testing.T) {
	_, err := LocationForm.Bind(map[string]string{"province_name": "  "}, false)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"province_name", "province_code", "city_name"}, fields)
}

func TestLocationForm_NullableTextAndDecimal(t *testing.T) {
	raw := validLocation()
	raw["district_name"] = ""
	raw["area_km2"] = "167.67"

	v, err := LocationForm.Bind(raw, false)
	require.NoError(t, err)
	assert.Nil(t, v["district_name"])
	assert.Equal(t, 167.67, v["area_km2"])
	assert.Equal(t, false, v["is_capital"])
}

func TestLocationForm_SubdistrictNeedsDistrict(t *testing.T) {
	raw := validLocation()
	raw["subdistrict_name"] = "Cibeunying"
	raw["district_name"] = ""

	_, err := LocationForm.Bind(raw, false)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "district_name", verr.Fields[0].Field)
}

func TestBind_PartialOnlyTouchesPresentFields(t *testing.T) {
	v, err := LocationForm.Bind(map[string]string{"population": "2500000"}, true)
	require.NoError(t, err)

	assert.Equal(t, Values{"population": int64(2500000)}, v)
}

func TestBind_FullBindAppliesDefaults(t *testing.T) {
	v, err := LocationForm.Bind(validLocation(), false)
	require.NoError(t, err)
	assert.Equal(t, true, v["is_active"])
	assert.Equal(t, false, v["is_capital"])

	v, err = LocationForm.Bind(map[string]string{"population": "10"}, true)
	require.NoError(t, err)
	assert.NotContains(t, v, "is_active")
}

func TestBind_PartialStillValidatesPresentFields(t *testing.T) {
	_, err := LocationForm.Bind(map[string]string{"province_name": ""}, true)
	assert.Error(t, err)
}

func TestBind_RejectsUnknownFields(t *testing.T) {
	raw := validLocation()
	raw["is_admin"] = "true"

	_, err := LocationForm.Bind(raw, false)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldError{Field: "is_admin", Message: "unknown field"}, verr.Fields[0])
}

func TestBind_EnumMembership(t *testing.T) {
	_, err := BookingForm.Bind(map[string]string{"payment_status": "maybe"}, true)
	assert.Error(t, err)

	v, err := BookingForm.Bind(map[string]string{"payment_status": "refunded"}, true)
	require.NoError(t, err)
	assert.Equal(t, "refunded", v["payment_status"])
}

func TestBookingForm_DateOrder(t *testing.T) {
	_, err := BookingForm.Bind(map[string]string{"start_date": "2026-03-10", "end_date": "2026-03-01"}, true)
	assert.Error(t, err)

	v, err := BookingForm.Bind(map[string]string{"start_date": "2026-03-01", "end_date": "2026-03-10"}, true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), v["end_date"])
}

func TestBoolean_AcceptsCheckboxValues(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "true": true, "1": true, "": false, "false": false, "no": false} {
		v, err := coerce(Field{Kind: Boolean}, in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v, in)
	}
}

func TestInquiryForm_Email(t *testing.T) {
	_, err := InquiryForm.Bind(map[string]string{"name": "Budi", "email": "not-an-email", "message": "Is it available?"}, false)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be a valid email address", verr.Fields[0].Message)
}
