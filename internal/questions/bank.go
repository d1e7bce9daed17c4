package questions

import "voxa/internal/models"

// Built-in question bank served when the LLM cannot produce a usable set.
// The interview should still be able to proceed without an upstream model.

var baseQuestions = []models.Question{
	{Question: "Can you tell me about yourself and why you're interested in this role?", Type: "behavioral"},
	{Question: "What are your greatest strengths and how do they relate to this position?", Type: "behavioral"},
	{Question: "Describe a challenging project you've worked on and how you overcame obstacles.", Type: "situational"},
	{Question: "Where do you see yourself in 5 years and how does this role fit into your career goals?", Type: "behavioral"},
	{Question: "What interests you most about working at our company?", Type: "behavioral"},
}

var roleSpecificQuestions = map[string][]models.Question{
	"Frontend Developer": {
		{Question: "Walk me through your approach to debugging a complex technical issue.", Type: "technical"},
		{Question: "How do you stay updated with new technologies and programming languages?", Type: "technical"},
	},
	"Product Manager": {
		{Question: "How do you prioritize features when you have limited resources?", Type: "role-specific"},
		{Question: "Describe how you would gather and analyze user feedback for a product.", Type: "role-specific"},
	},
	"Data Scientist": {
		{Question: "Explain a machine learning project you've worked on from start to finish.", Type: "technical"},
		{Question: "How do you handle missing or inconsistent data in your analysis?", Type: "technical"},
	},
}

var genericRoleQuestions = []models.Question{
	{Question: "What specific skills and experience make you a good fit for this role?", Type: "role-specific"},
	{Question: "How do you handle working under pressure and tight deadlines?", Type: "situational"},
}

// FallbackQuestions returns the built-in set for a role: the shared base
// questions plus a role-specific pair.
func FallbackQuestions(role string) []models.Question {
	specific, ok := roleSpecificQuestions[role]
	if !ok {
		specific = genericRoleQuestions
	}

	out := make([]models.Question, 0, len(baseQuestions)+len(specific))
	out = append(out, baseQuestions...)
	out = append(out, specific...)
	return out
}
