package models

import "fmt"

// Update is a partial ICP. Nil fields are left untouched when applied; a non-nil
// list replaces the stored list wholesale.
type Update struct {
	Role             *string   `json:"role,omitempty"`
	Industry         *string   `json:"industry,omitempty"`
	CompanySize      *string   `json:"companySize,omitempty"`
	Geography        *string   `json:"geography,omitempty"`
	PainPoints       *[]string `json:"painPoints,omitempty"`
	Goals            *[]string `json:"goals,omitempty"`
	Objections       *[]string `json:"objections,omitempty"`
	PurchaseTriggers *[]string `json:"purchaseTriggers,omitempty"`
	TechStack        *[]string `json:"techStack,omitempty"`
}

// Apply returns a copy of p with every field present in u overwritten.
// Lists are replaced, not merged: the model restates the cumulative list on each call.
func (p ICP) Apply(u Update) ICP {
	next := p.Clone()
	setString(&next.Role, u.Role)
	setString(&next.Industry, u.Industry)
	setString(&next.CompanySize, u.CompanySize)
	setString(&next.Geography, u.Geography)
	setList(&next.PainPoints, u.PainPoints)
	setList(&next.Goals, u.Goals)
	setList(&next.Objections, u.Objections)
	setList(&next.PurchaseTriggers, u.PurchaseTriggers)
	setList(&next.TechStack, u.TechStack)
	return next.Normalize()
}

// IsZero reports whether the update carries no recognised field.
func (u Update) IsZero() bool {
	return u == Update{}
}

// Fields lists the names of the fields present in u.
func (u Update) Fields() []string {
	var names []string
	add := func(present bool, name string) {
		if present {
			names = append(names, name)
		}
	}
	add(u.Role != nil, FieldRole)
	add(u.Industry != nil, FieldIndustry)
	add(u.CompanySize != nil, FieldCompanySize)
	add(u.Geography != nil, FieldGeography)
	add(u.PainPoints != nil, FieldPainPoints)
	add(u.Goals != nil, FieldGoals)
	add(u.Objections != nil, FieldObjections)
	add(u.PurchaseTriggers != nil, FieldPurchaseTriggers)
	add(u.TechStack != nil, FieldTechStack)
	return names
}

// UpdateFromArgs converts loosely typed tool-call arguments into an Update.
// Unknown keys and values of the wrong shape are skipped field by field.
func UpdateFromArgs(args map[string]any) Update {
	var u Update
	for key, raw := range args {
		switch key {
		case FieldRole:
			u.Role = asString(raw)
		case FieldIndustry:
			u.Industry = asString(raw)
		case FieldCompanySize:
			u.CompanySize = asString(raw)
		case FieldGeography:
			u.Geography = asString(raw)
		case FieldPainPoints:
			u.PainPoints = asList(raw)
		case FieldGoals:
			u.Goals = asList(raw)
		case FieldObjections:
			u.Objections = asList(raw)
		case FieldPurchaseTriggers:
			u.PurchaseTriggers = asList(raw)
		case FieldTechStack:
			u.TechStack = asList(raw)
		}
	}
	return u
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setList(dst *[]string, src *[]string) {
	if src != nil {
		*dst = cloneList(*src)
	}
}

func asString(raw any) *string {
	switch v := raw.(type) {
	case string:
		return &v
	case fmt.Stringer:
		s := v.String()
		return &s
	}
	return nil
}

func asList(raw any) *[]string {
	switch v := raw.(type) {
	case []string:
		out := cloneList(v)
		return &out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return &out
	}
	return nil
}
