package models

// ICP is the Ideal Customer Profile assembled during a conversation.
// Unfilled scalars are empty strings and unfilled lists are empty slices, never nil.
type ICP struct {
	Role             string   `json:"role"`
	Industry         string   `json:"industry"`
	CompanySize      string   `json:"companySize"`
	Geography        string   `json:"geography"`
	PainPoints       []string `json:"painPoints"`
	Goals            []string `json:"goals"`
	Objections       []string `json:"objections"`
	PurchaseTriggers []string `json:"purchaseTriggers"`
	TechStack        []string `json:"techStack"`
}

// Field names as they appear in updateICP arguments and persisted JSON.
const (
	FieldRole             = "role"
	FieldIndustry         = "industry"
	FieldCompanySize      = "companySize"
	FieldGeography        = "geography"
	FieldPainPoints       = "painPoints"
	FieldGoals            = "goals"
	FieldObjections       = "objections"
	FieldPurchaseTriggers = "purchaseTriggers"
	FieldTechStack        = "techStack"
)

// NewICP returns the empty profile.
func NewICP() ICP {
	return ICP{
		PainPoints:       []string{},
		Goals:            []string{},
		Objections:       []string{},
		PurchaseTriggers: []string{},
		TechStack:        []string{},
	}
}

// Normalize replaces nil lists with empty ones, e.g. after decoding a stored record
// that predates a field.
func (p ICP) Normalize() ICP {
	p.PainPoints = orEmpty(p.PainPoints)
	p.Goals = orEmpty(p.Goals)
	p.Objections = orEmpty(p.Objections)
	p.PurchaseTriggers = orEmpty(p.PurchaseTriggers)
	p.TechStack = orEmpty(p.TechStack)
	return p
}

// IsEmpty reports whether no field carries data.
func (p ICP) IsEmpty() bool {
	return p.Role == "" && p.Industry == "" && p.CompanySize == "" && p.Geography == "" &&
		len(p.PainPoints) == 0 && len(p.Goals) == 0 && len(p.Objections) == 0 &&
		len(p.PurchaseTriggers) == 0 && len(p.TechStack) == 0
}

// HasAnyData is the "user has started" signal. It only looks at role, industry,
// pain points and goals.
func (p ICP) HasAnyData() bool {
	return p.Role != "" || p.Industry != "" || len(p.PainPoints) > 0 || len(p.Goals) > 0
}

// IsComplete reports whether every section is complete.
func (p ICP) IsComplete() bool {
	for _, s := range Sections {
		if !IsSectionComplete(s, p) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (p ICP) Clone() ICP {
	p.PainPoints = cloneList(p.PainPoints)
	p.Goals = cloneList(p.Goals)
	p.Objections = cloneList(p.Objections)
	p.PurchaseTriggers = cloneList(p.PurchaseTriggers)
	p.TechStack = cloneList(p.TechStack)
	return p
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func cloneList(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
