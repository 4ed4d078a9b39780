// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"

	"codeberg.org/waap/waap/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestProfileComplete(t *testing.T) {
	deptID := int64(1)
	classID := int64(2)
	level := int64(3)

	user := &models.User{
		FirstName:        "Alex",
		LastName:         "Tremblay",
		Email:            "alex.tremblay@tbs-sct.gc.ca",
		DepartmentID:     &deptID,
		ClassificationID: &classID,
		Level:            &level,
	}

	assert.True(t, user.ProfileComplete())
}

func TestProfileComplete_Placeholder(t *testing.T) {
	user := &models.User{Email: "alex.tremblay@tbs-sct.gc.ca"}

	assert.False(t, user.ProfileComplete())
}

func TestProfileComplete_WhitespaceName(t *testing.T) {
	deptID := int64(1)
	classID := int64(2)
	level := int64(3)

	user := &models.User{
		FirstName:        "  ",
		LastName:         "Tremblay",
		DepartmentID:     &deptID,
		ClassificationID: &classID,
		Level:            &level,
	}

	assert.False(t, user.ProfileComplete())
}

func TestFullName(t *testing.T) {
	user := &models.User{FirstName: "Alex", LastName: "Tremblay"}
	assert.Equal(t, "Alex Tremblay", user.FullName())

	placeholder := &models.User{}
	assert.Equal(t, "", placeholder.FullName())
}

func TestHashEmail(t *testing.T) {
	h1 := models.HashEmail("alex@example.gc.ca")
	h2 := models.HashEmail("alex@example.gc.ca")
	h3 := models.HashEmail("sam@example.gc.ca")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}
