package models

// Section is one of the four precedence-ordered groupings of ICP fields.
type Section string

const (
	SectionFirmographics  Section = "firmographics"
	SectionPsychographics Section = "psychographics"
	SectionStrategy       Section = "strategy"
	SectionTechnology     Section = "technology"
)

// Sections in precedence order. Each section is gated on the one before it.
var Sections = []Section{
	SectionFirmographics,
	SectionPsychographics,
	SectionStrategy,
	SectionTechnology,
}

// ParseSection returns the section named s.
func ParseSection(s string) (Section, bool) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// Title is the display name of the section.
func (s Section) Title() string {
	switch s {
	case SectionFirmographics:
		return "Firmographics"
	case SectionPsychographics:
		return "Psychographics"
	case SectionStrategy:
		return "Strategy"
	case SectionTechnology:
		return "Technology"
	}
	return string(s)
}

// Fields returns the ICP field names grouped under s.
func (s Section) Fields() []string {
	switch s {
	case SectionFirmographics:
		return []string{FieldRole, FieldIndustry, FieldCompanySize, FieldGeography}
	case SectionPsychographics:
		return []string{FieldPainPoints, FieldGoals}
	case SectionStrategy:
		return []string{FieldPurchaseTriggers, FieldObjections}
	case SectionTechnology:
		return []string{FieldTechStack}
	}
	return nil
}

// Previous returns the section gating s, or false for the first section.
func (s Section) Previous() (Section, bool) {
	for i, sec := range Sections {
		if sec == s && i > 0 {
			return Sections[i-1], true
		}
	}
	return "", false
}

// LockMessage is shown in place of a locked section's contents.
func (s Section) LockMessage() string {
	prev, ok := s.Previous()
	if !ok {
		return ""
	}
	return "Complete " + prev.Title() + " first"
}

// FieldLabel is the human readable label for an ICP field.
func FieldLabel(field string) string {
	switch field {
	case FieldRole:
		return "Role / Persona"
	case FieldIndustry:
		return "Industry"
	case FieldCompanySize:
		return "Company Size"
	case FieldGeography:
		return "Geography"
	case FieldPainPoints:
		return "Pain Points"
	case FieldGoals:
		return "Goals"
	case FieldPurchaseTriggers:
		return "Purchase Triggers"
	case FieldObjections:
		return "Common Objections"
	case FieldTechStack:
		return "Tech Stack"
	}
	return field
}

// FieldPlaceholder is the text shown while a field is still empty.
func FieldPlaceholder(field string) string {
	switch field {
	case FieldPainPoints:
		return "What keeps them up at night?"
	case FieldGoals:
		return "What does success look like?"
	case FieldPurchaseTriggers:
		return "What makes them start looking?"
	case FieldObjections:
		return "Why would they say no?"
	case FieldTechStack:
		return "What tools do they use?"
	}
	return "Not defined..."
}

// IsSectionComplete reports whether every field of section s is filled in p.
func IsSectionComplete(s Section, p ICP) bool {
	switch s {
	case SectionFirmographics:
		return p.Role != "" && p.Industry != "" && p.CompanySize != "" && p.Geography != ""
	case SectionPsychographics:
		return len(p.PainPoints) > 0 && len(p.Goals) > 0
	case SectionStrategy:
		return len(p.PurchaseTriggers) > 0 && len(p.Objections) > 0
	case SectionTechnology:
		return len(p.TechStack) > 0
	}
	return false
}

// IsSectionLocked reports whether s is hidden behind an incomplete predecessor.
func IsSectionLocked(s Section, p ICP) bool {
	prev, ok := s.Previous()
	if !ok {
		return false
	}
	return !IsSectionComplete(prev, p)
}

// FieldValue returns the value of a field as a list: scalars yield zero or one item.
func (p ICP) FieldValue(field string) []string {
	scalar := func(v string) []string {
		if v == "" {
			return nil
		}
		return []string{v}
	}
	switch field {
	case FieldRole:
		return scalar(p.Role)
	case FieldIndustry:
		return scalar(p.Industry)
	case FieldCompanySize:
		return scalar(p.CompanySize)
	case FieldGeography:
		return scalar(p.Geography)
	case FieldPainPoints:
		return p.PainPoints
	case FieldGoals:
		return p.Goals
	case FieldPurchaseTriggers:
		return p.PurchaseTriggers
	case FieldObjections:
		return p.Objections
	case FieldTechStack:
		return p.TechStack
	}
	return nil
}

// IsListField reports whether field holds a list.
func IsListField(field string) bool {
	switch field {
	case FieldPainPoints, FieldGoals, FieldPurchaseTriggers, FieldObjections, FieldTechStack:
		return true
	}
	return false
}
