package claimant

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPatch_Apply(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)

	tests := []struct {
		name        string
		patch       Patch
		wantChanged []Field
		check       func(t *testing.T, c Claimant)
	}{
		{
			name:        "empty patch changes nothing",
			patch:       Patch{},
			wantChanged: []Field{},
			check: func(t *testing.T, c Claimant) {
				assert.Equal(t, created, c.UpdatedAt)
			},
		},
		{
			name:        "same value is not a change",
			patch:       Patch{Name: strPtr("Ada"), TargetLocation: strPtr("Leeds")},
			wantChanged: []Field{},
			check: func(t *testing.T, c Claimant) {
				assert.Equal(t, created, c.UpdatedAt)
			},
		},
		{
			name:        "only supplied fields change",
			patch:       Patch{SearchKeywords: strPtr(" go, sql ")},
			wantChanged: []Field{FieldSearchKeywords},
			check: func(t *testing.T, c Claimant) {
				assert.Equal(t, "go, sql", *c.SearchKeywords)
				assert.Equal(t, "Ada", c.Name)
				assert.Equal(t, "Leeds", *c.TargetLocation)
				assert.Equal(t, now, c.UpdatedAt)
			},
		},
		{
			name:        "empty string clears optional",
			patch:       Patch{TargetLocation: strPtr("")},
			wantChanged: []Field{FieldTargetLocation},
			check: func(t *testing.T, c Claimant) {
				assert.Nil(t, c.TargetLocation)
			},
		},
		{
			name:        "email is normalized",
			patch:       Patch{Email: strPtr(" ADA@Example.com ")},
			wantChanged: []Field{},
			check: func(t *testing.T, c Claimant) {
				assert.Equal(t, "ada@example.com", c.Email)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Claimant{
				Name:           "Ada",
				Email:          "ada@example.com",
				TargetLocation: strPtr("Leeds"),
				CreatedAt:      created,
				UpdatedAt:      created,
			}
			changed := tt.patch.Apply(&c, now)
			assert.Equal(t, tt.wantChanged, changed)
			tt.check(t, c)
		})
	}
}

func TestPatch_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Patch{}.Validate())
	assert.NoError(t, Patch{Name: strPtr("x")}.Validate())
	assert.True(t, errors.Is(Patch{Name: strPtr(" ")}.Validate(), ErrInvalidPatch))
	assert.True(t, errors.Is(Patch{Email: strPtr("")}.Validate(), ErrInvalidPatch))
}

func TestPatch_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{Notes: strPtr("")}.IsEmpty())
}

func TestPatchFromMap(t *testing.T) {
	t.Parallel()

	p, err := PatchFromMap(map[string]any{
		"name":            "Grace",
		"search_keywords": "cobol",
		"phone_number":    nil,
	})
	require.NoError(t, err)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Grace", *p.Name)
	assert.Equal(t, "cobol", *p.SearchKeywords)
	require.NotNil(t, p.PhoneNumber)
	assert.Equal(t, "", *p.PhoneNumber)
	assert.Nil(t, p.Email)

	_, err = PatchFromMap(map[string]any{"salary": "lots"})
	assert.True(t, errors.Is(err, ErrInvalidPatch))

	_, err = PatchFromMap(map[string]any{"name": 42.0})
	assert.True(t, errors.Is(err, ErrInvalidPatch))

	_, err = PatchFromMap(map[string]any{"email": nil})
	assert.True(t, errors.Is(err, ErrInvalidPatch))

	_, err = PatchFromMap(map[string]any{"unknown": nil})
	assert.True(t, errors.Is(err, ErrInvalidPatch))

	p, err = PatchFromMap(map[string]any{})
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestClaimant_CVText(t *testing.T) {
	t.Parallel()

	c := Claimant{Documents: []Document{
		{DocumentType: "CV", RawText: strPtr("python developer")},
		{DocumentType: "Cover Letter", RawText: strPtr("dear sir")},
		{DocumentType: "cv", RawText: nil},
		{DocumentType: "cv", RawText: strPtr("")},
		{DocumentType: "Cv", RawText: strPtr("fastapi")},
	}}
	assert.Equal(t, "python developer fastapi", c.CVText())
	assert.Equal(t, "", Claimant{}.CVText())
}
