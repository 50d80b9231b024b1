package profiler

import (
	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/google/generative-ai-go/genai"
)

func stringProp(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func listProp(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: desc,
	}
}

// UpdateICPTool lets the model write profile fields mid-conversation.
// Every property is optional; lists are sent in full each time.
var UpdateICPTool = &genai.Tool{
	FunctionDeclarations: []*genai.FunctionDeclaration{{
		Name:        chat.UpdateToolName,
		Description: "Updates the Ideal Customer Profile (ICP) with new or refined information gathered from the conversation.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				models.FieldRole:             stringProp("The job title or role of the target persona (e.g., CTO, VP of Sales)."),
				models.FieldIndustry:         stringProp("The target industry or vertical."),
				models.FieldCompanySize:      stringProp("Size of the target company (e.g., 50-200 employees, Enterprise)."),
				models.FieldGeography:        stringProp("Target geographic location."),
				models.FieldPainPoints:       listProp("Complete list of problems or pains the customer faces."),
				models.FieldGoals:            listProp("Complete list of what the customer wants to achieve."),
				models.FieldObjections:       listProp("Complete list of reasons why they might say no."),
				models.FieldPurchaseTriggers: listProp("Complete list of events that cause them to look for a solution."),
				models.FieldTechStack:        listProp("Complete list of tools or software they likely use."),
			},
		},
	}},
}
