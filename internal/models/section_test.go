package models_test

import (
	"testing"

	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFirmographics_AllCombinations(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		p := models.NewICP()
		if mask&1 != 0 {
			p.Role = "CTO"
		}
		if mask&2 != 0 {
			p.Industry = "SaaS"
		}
		if mask&4 != 0 {
			p.CompanySize = "50-200"
		}
		if mask&8 != 0 {
			p.Geography = "US"
		}
		assert.Equal(t, mask == 15, models.IsSectionComplete(models.SectionFirmographics, p), "mask %04b", mask)
	}
}

func TestSectionPredicates(t *testing.T) {
	p := models.NewICP()
	p.PainPoints = []string{"x"}
	assert.False(t, models.IsSectionComplete(models.SectionPsychographics, p))
	p.Goals = []string{"y"}
	assert.True(t, models.IsSectionComplete(models.SectionPsychographics, p))

	p.PurchaseTriggers = []string{"z"}
	assert.False(t, models.IsSectionComplete(models.SectionStrategy, p))
	p.Objections = []string{"w"}
	assert.True(t, models.IsSectionComplete(models.SectionStrategy, p))

	assert.False(t, models.IsSectionComplete(models.SectionTechnology, p))
	p.TechStack = []string{"Slack"}
	assert.True(t, models.IsSectionComplete(models.SectionTechnology, p))

	assert.False(t, models.IsSectionComplete(models.Section("other"), p))
}

func TestSectionLocking(t *testing.T) {
	empty := models.NewICP()
	assert.False(t, models.IsSectionLocked(models.SectionFirmographics, empty))
	assert.True(t, models.IsSectionLocked(models.SectionPsychographics, empty))
	assert.True(t, models.IsSectionLocked(models.SectionStrategy, empty))
	assert.True(t, models.IsSectionLocked(models.SectionTechnology, empty))

	// Locking only looks at the immediate predecessor.
	p := models.NewICP()
	p.PurchaseTriggers = []string{"a"}
	p.Objections = []string{"b"}
	assert.False(t, models.IsSectionLocked(models.SectionTechnology, p))
	assert.True(t, models.IsSectionLocked(models.SectionStrategy, p))
}

func TestSectionMetadata(t *testing.T) {
	assert.Equal(t, "Complete Firmographics first", models.SectionPsychographics.LockMessage())
	assert.Equal(t, "Complete Strategy first", models.SectionTechnology.LockMessage())
	assert.Empty(t, models.SectionFirmographics.LockMessage())

	s, ok := models.ParseSection("strategy")
	assert.True(t, ok)
	assert.Equal(t, models.SectionStrategy, s)
	_, ok = models.ParseSection("nope")
	assert.False(t, ok)

	total := 0
	for _, sec := range models.Sections {
		total += len(sec.Fields())
	}
	assert.Equal(t, 9, total)
	assert.Equal(t, "Common Objections", models.FieldLabel(models.FieldObjections))
}

func TestFieldValue(t *testing.T) {
	p := fullICP()
	assert.Equal(t, []string{"VP Sales"}, p.FieldValue(models.FieldRole))
	assert.Equal(t, []string{"Salesforce"}, p.FieldValue(models.FieldTechStack))
	assert.Nil(t, models.NewICP().FieldValue(models.FieldGeography))
}
