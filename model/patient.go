package model

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// PatientCollection is the collection patient documents are stored in.
const PatientCollection = "patients"

// Gender is the closed set of accepted gender values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists every accepted value in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// ParseGender matches s exactly (case-sensitive) against the accepted values.
func ParseGender(s string) (Gender, bool) {
	for _, g := range Genders {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// PatientForm holds the five submitted fields after type conversion and before validation.
type PatientForm struct {
	Name      string `form:"name" validate:"min=1"`
	Age       int    `form:"age" validate:"gt=0,lt=150"`
	Gender    string `form:"gender" validate:"gender"`
	Condition string `form:"condition"`
	Disease   string `form:"disease"`
}

// PatientRecord is a validated patient. It has no identifier until the store assigns one.
type PatientRecord struct {
	Name      string `json:"name" bson:"name"`
	Age       int    `json:"age" bson:"age"`
	Gender    Gender `json:"gender" bson:"gender"`
	Condition string `json:"condition" bson:"condition"`
	Disease   string `json:"disease" bson:"disease"`
}

// PatientResponse is a patient as shown to callers, with the store id as plain text.
type PatientResponse struct {
	ID        string `json:"id,omitempty" example:"6650c3f2e4b0a1b2c3d4e5f6"`
	Name      string `json:"name" example:"John Doe"`
	Age       int    `json:"age" example:"30"`
	Gender    Gender `json:"gender" example:"Male"`
	Condition string `json:"condition" example:"Stable"`
	Disease   string `json:"disease" example:"Flu"`
}

// StoredPatient is the decode shape of a persisted patient document.
type StoredPatient struct {
	ID            string `bson:"_id"`
	PatientRecord `bson:",inline"`
}

// ParsePatientForm reads the required form fields through lookup, which reports
// whether a key was submitted at all (gin's Context.GetPostForm fits).
// Missing fields and a non-integer age are reported together.
func ParsePatientForm(lookup func(key string) (string, bool)) (PatientForm, error) {
	var (
		form PatientForm
		verr ValidationError
	)

	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			verr.add(key, "field required")
		}
		return v
	}

	form.Name = get("name")
	ageRaw := get("age")
	form.Gender = get("gender")
	form.Condition = get("condition")
	form.Disease = get("disease")

	if _, ok := lookup("age"); ok {
		age, err := strconv.Atoi(strings.TrimSpace(ageRaw))
		if err != nil {
			verr.add("age", "must be an integer")
		}
		form.Age = age
	}

	if len(verr.Fields) > 0 {
		return PatientForm{}, &verr
	}
	return form, nil
}

// ValidatePatient checks every constraint on form and builds the record only if all hold.
// The returned error is a *ValidationError naming each violated field.
func ValidatePatient(form PatientForm) (PatientRecord, error) {
	if err := validate.Struct(form); err != nil {
		return PatientRecord{}, toValidationError(err)
	}

	gender, _ := ParseGender(form.Gender)
	return PatientRecord{
		Name:      form.Name,
		Age:       form.Age,
		Gender:    gender,
		Condition: form.Condition,
		Disease:   form.Disease,
	}, nil
}

// ToResponse maps a record and its store id to the caller-facing shape.
// An empty id means the record was never persisted and is left out.
func ToResponse(record PatientRecord, id string) PatientResponse {
	return PatientResponse{
		ID:        id,
		Name:      record.Name,
		Age:       record.Age,
		Gender:    record.Gender,
		Condition: record.Condition,
		Disease:   record.Disease,
	}
}

// DecodeStoredPatient decodes one persisted document. An ObjectID _id decodes as its hex string.
func DecodeStoredPatient(raw bson.Raw) (StoredPatient, error) {
	var p StoredPatient
	if err := bson.Unmarshal(raw, &p); err != nil {
		return StoredPatient{}, err
	}
	return p, nil
}
