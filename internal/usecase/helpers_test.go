package usecase

import (
	"testing"

	"github.com/nutrigrade/backend/internal/domain"
	"github.com/nutrigrade/backend/internal/infrastructure/reference"
)

func ptr[T any](v T) *T {
	return &v
}

// newTestTable builds a small reference table used across usecase tests
func newTestTable(t *testing.T) *reference.Table {
	t.Helper()

	table, err := reference.NewTable([]domain.AdditiveRecord{
		{InsNumber: "150a", Name: "Plain caramel", Status: domain.StatusPermitted},
		{InsNumber: "150d", Name: "Sulphite ammonia caramel", Status: domain.StatusRestricted, MaxPPM: ptr(200.0), AllowedIn: []string{"soft drinks"}},
		{InsNumber: "200", Name: "Sorbic acid", Status: domain.StatusRestricted, MaxPPM: ptr(1000.0), AllowedIn: []string{"cheese", "bakery"}, Notes: ptr("Preservative class II")},
		{InsNumber: "211", Name: "Sodium benzoate", Status: domain.StatusPermitted},
		{InsNumber: "250", Name: "Sodium nitrite", Status: domain.StatusBanned},
		{InsNumber: "330", Name: "Citric acid", Status: domain.StatusPermitted},
		{InsNumber: "331", Name: "Sodium citrates", Status: domain.StatusPermitted},
		{InsNumber: "471", Name: "Mono- and diglycerides of fatty acids", Status: domain.StatusPermitted},
		{InsNumber: "621", Name: "Monosodium glutamate", Status: domain.StatusPermitted},
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return table
}

func codesOf(extracted []domain.ExtractedCode) []string {
	out := make([]string, len(extracted))
	for i, c := range extracted {
		out[i] = c.Code
	}
	return out
}
