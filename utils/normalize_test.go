package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type lineDTO struct {
	ItemID string
	Price  float64
}

type invoiceDTO struct {
	Number string
	Total  float64
	Lines  []lineDTO
}

type partyPatchDTO struct {
	Name    *string  `json:"name"`
	PartyID *string  `json:"partyId"`
	Limit   *float64 `json:"limit"`
	Secret  *string  `json:"-"`
	Region  *string  `column:"region_code"`
}

func TestNormalizeDTODescendsIntoLines(t *testing.T) {
	in := invoiceDTO{
		Number: "  S-0001 ",
		Total:  10.456,
		Lines:  []lineDTO{{ItemID: " a ", Price: 1.239}},
	}
	NormalizeDTO(&in)

	assert.Equal(t, "S-0001", in.Number)
	assert.Equal(t, 10.46, in.Total)
	assert.Equal(t, "a", in.Lines[0].ItemID)
	assert.Equal(t, 1.24, in.Lines[0].Price)
}

func TestUpdatesFromPtrDTO(t *testing.T) {
	name := " ACME "
	limit := 12.345
	region := "EU"
	secret := "x"
	dto := partyPatchDTO{Name: &name, Limit: &limit, Region: &region, Secret: &secret}

	NormalizePtrDTO(&dto)
	got := UpdatesFromPtrDTO(&dto)

	assert.Equal(t, map[string]any{
		"name":        "ACME",
		"limit":       12.35,
		"region_code": "EU",
	}, got)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 25, ParseIntDefault(" 25 ", 10))
	assert.Equal(t, 10, ParseIntDefault("-1", 10))
	assert.Equal(t, 10, ParseIntDefault("x", 10))
}
