package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Mehdichaaki/dashbord/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Email(t *testing.T) {
	valid := []string{"ana@x.io", "first.last@school.edu", "a_b-c@mail.example.com"}
	invalid := []string{"", "ana", "ana@", "@x.io", "ana@x", "ana@x.i", "ana@x.toolongtld", "ana x@x.io"}

	for _, v := range valid {
		assert.NoError(t, validation.Check(validation.Email, v), v)
	}
	for _, v := range invalid {
		assert.Error(t, validation.Check(validation.Email, v), v)
	}
}

func TestCheck_Grade(t *testing.T) {
	for _, g := range []string{"A", "A+", "B-", "C", "D+", "E", "F-"} {
		assert.NoError(t, validation.Check(validation.Grade, g), g)
	}
	for _, g := range []string{"", "G", "a", "A++", "AB", "+A", " A", "A+ "} {
		assert.Error(t, validation.Check(validation.Grade, g), g)
	}
}

func TestCheck_Attendance(t *testing.T) {
	tests := []struct {
		value int
		ok    bool
	}{
		{-1, false},
		{0, true},
		{55, true},
		{100, true},
		{101, false},
	}

	for _, tt := range tests {
		err := validation.Check(validation.Attendance, tt.value)
		if tt.ok {
			assert.NoError(t, err, tt.value)
		} else {
			assert.Error(t, err, tt.value)
		}
	}
}

func TestCheck_Comments(t *testing.T) {
	assert.NoError(t, validation.Check(validation.Comments, ""))
	assert.NoError(t, validation.Check(validation.Comments, strings.Repeat("a", 500)))
	assert.NoError(t, validation.Check(validation.Comments, strings.Repeat("é", 500)))
	assert.Error(t, validation.Check(validation.Comments, strings.Repeat("a", 501)))
}

func TestCheck_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"Valid", "Secret#123", true},
		{"TooShort", "Se#1abc", false},
		{"MinLength", "Se#1abcd", true},
		{"TooLong", "Aa1!" + strings.Repeat("x", 97), false},
		{"MaxLength", "Aa1!" + strings.Repeat("x", 96), true},
		{"NoUpper", "secret#123", false},
		{"NoLower", "SECRET#123", false},
		{"NoDigit", "Secret#abc", false},
		{"NoSymbol", "Secret1234", false},
		{"SpaceIsNotSymbol", "Secret 123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Check(validation.Password, tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCheck_ErrorShape(t *testing.T) {
	err := validation.Check(validation.Grade, "Z")
	require.Error(t, err)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "grade")
	assert.Contains(t, verr.Fields["grade"], "letter from A to F")
}

type entryRequest struct {
	Subject    string `json:"subject" validate:"required"`
	Grade      string `json:"grade" validate:"required,letter_grade"`
	Attendance *int   `json:"attendance" validate:"required,min=0,max=100"`
	Comments   string `json:"comments" validate:"max=500"`
}

func intPtr(i int) *int { return &i }

func TestStruct(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		err := validation.Struct(entryRequest{Subject: "Math", Grade: "B+", Attendance: intPtr(0)})
		assert.NoError(t, err)
	})

	t.Run("FieldsUseJSONNames", func(t *testing.T) {
		err := validation.Struct(entryRequest{Grade: "Q", Attendance: intPtr(101)})

		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "subject is required", verr.Fields["subject"])
		assert.Contains(t, verr.Fields, "grade")
		assert.Contains(t, verr.Fields, "attendance")
		assert.NotContains(t, verr.Fields, "comments")
	})

	t.Run("MissingAttendance", func(t *testing.T) {
		err := validation.Struct(entryRequest{Subject: "Math", Grade: "A"})

		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "attendance is required", verr.Fields["attendance"])
	})
}
