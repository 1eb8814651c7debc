package cowin

import "cowin-slot-assistant/internal/common/validation"

func StatesSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"states"},
		Properties: map[string]validation.Property{
			"states": {
				Type: "array",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"state_id", "state_name"},
					Properties: map[string]validation.Property{
						"state_id":   {Type: "integer"},
						"state_name": {Type: "string", MinLength: validation.IntPtr(1)},
					},
				},
			},
		},
	}
}

func DistrictsSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"districts"},
		Properties: map[string]validation.Property{
			"districts": {
				Type: "array",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"district_id", "district_name"},
					Properties: map[string]validation.Property{
						"district_id":   {Type: "integer"},
						"district_name": {Type: "string", MinLength: validation.IntPtr(1)},
					},
				},
			},
		},
	}
}

// BeneficiariesSchema leaves birth_year untyped: the service sends it as a
// numeric string, the pattern only applies when it is a string.
func BeneficiariesSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"beneficiaries"},
		Properties: map[string]validation.Property{
			"beneficiaries": {
				Type: "array",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"beneficiary_reference_id", "name", "birth_year", "vaccination_status"},
					Properties: map[string]validation.Property{
						"beneficiary_reference_id": {Type: "string", MinLength: validation.IntPtr(1)},
						"name":                     {Type: "string"},
						"birth_year":               {Pattern: validation.StringPtr(`^[0-9]{4}$`)},
						"vaccine":                  {Type: "string", Nullable: true},
						"vaccination_status": {
							Type: "string",
							Enum: []string{StatusNotVaccinated, StatusPartiallyVaccinated, StatusVaccinated},
						},
						"dose1_date": {Type: "string", Nullable: true},
					},
				},
			},
		},
	}
}

func CalendarSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"centers"},
		Properties: map[string]validation.Property{
			"centers": {
				Type: "array",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"center_id", "name", "sessions"},
					Properties: map[string]validation.Property{
						"center_id": {Type: "integer"},
						"name":      {Type: "string"},
						"sessions": {
							Type: "array",
							Items: &validation.Property{
								Type:     "object",
								Required: []string{"session_id", "date", "available_capacity", "min_age_limit"},
								Properties: map[string]validation.Property{
									"session_id":         {Type: "string"},
									"date":               {Type: "string", Pattern: validation.StringPtr(`^[0-9]{2}-[0-9]{2}-[0-9]{4}$`)},
									"available_capacity": {Type: "number", Minimum: validation.FloatPtr(0)},
									"min_age_limit":      {Type: "integer"},
									"vaccine":            {Type: "string"},
									"slots":              {Type: "array", Items: &validation.Property{Type: "string"}},
								},
							},
						},
					},
				},
			},
		},
	}
}

func OTPSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"txnId"},
		Properties: map[string]validation.Property{
			"txnId": {Type: "string", MinLength: validation.IntPtr(1)},
		},
	}
}

func TokenSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"token"},
		Properties: map[string]validation.Property{
			"token": {Type: "string", MinLength: validation.IntPtr(1)},
		},
	}
}

func CaptchaSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"captcha"},
		Properties: map[string]validation.Property{
			"captcha": {Type: "string", MinLength: validation.IntPtr(1)},
		},
	}
}
