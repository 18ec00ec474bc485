package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/missionly/missionly-core/entitlement"
)

func sampleMission() *Mission {
	return &Mission{
		ID:            7,
		Title:         "Night shift nurse",
		Description:   "Two week replacement, ICU experience required.",
		City:          "Lyon",
		Speciality:    "ICU",
		SalaryMin:     250000,
		SalaryMax:     320000,
		IsUrgent:      true,
		Status:        MissionOpen,
		Establishment: Establishment{Name: "Clinique des Alpes"},
		CreatedAt:     time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestToMissionResponseHiddenLeaksNothing(t *testing.T) {
	resp := sampleMission().ToMissionResponse(entitlement.Hidden())

	assert.Equal(t, "HIDDEN", resp.Visibility)
	assert.Empty(t, resp.ID)
	assert.Empty(t, resp.Title)
	assert.Empty(t, resp.City)
	assert.Empty(t, resp.EstablishmentName)
	assert.Empty(t, resp.CreatedAt)
	assert.Zero(t, resp.SalaryMax)
}

func TestToMissionResponseRedactedKeepsIdentifyingMetadata(t *testing.T) {
	resp := sampleMission().ToMissionResponse(entitlement.Redacted(entitlement.ReasonUrgentPremiumOnly))

	assert.Equal(t, "7", resp.ID)
	assert.Equal(t, "Night shift nurse", resp.Title)
	assert.Equal(t, "Clinique des Alpes", resp.EstablishmentName)
	assert.Equal(t, "Lyon", resp.City)
	assert.Equal(t, 3200.0, resp.SalaryMax)
	assert.Equal(t, "URGENT_PREMIUM_ONLY", resp.RedactionReason)

	// Free text and exact figures stay blanked.
	assert.Empty(t, resp.Description)
	assert.Empty(t, resp.Speciality)
	assert.Zero(t, resp.SalaryMin)
	assert.Empty(t, resp.Status)
}

func TestToMissionResponseFull(t *testing.T) {
	resp := sampleMission().ToMissionResponse(entitlement.Full())

	assert.Equal(t, "FULL", resp.Visibility)
	assert.Equal(t, "Clinique des Alpes", resp.EstablishmentName)
	assert.Equal(t, "Two week replacement, ICU experience required.", resp.Description)
	assert.Equal(t, 2500.0, resp.SalaryMin)
	assert.Equal(t, "OPEN", resp.Status)
	assert.Empty(t, resp.RedactionReason)
}
