package engine

import (
	"strings"
)

// Messages is the catalog of fixed assistant texts. Templates use {{name}}
// for the candidate's name.
type Messages struct {
	Greeting         string
	Announcement     string
	Farewell         string
	ThankYou         string
	Fallback         string
	InvalidInput     string
	LanguagePrompt   string
	LanguageAccepted map[string]string
}

// DefaultMessages returns the assistant's standard wording.
func DefaultMessages() Messages {
	return Messages{
		Greeting: "👋 Welcome to TalentScout's AI Hiring Assistant! I'm here to screen candidates for tech roles. " +
			"I'll ask for some basic information and then pose technical questions based on your tech stack. " +
			"Let's get started with your full name. (Type 'exit' at any time to end the conversation.)",
		Announcement:   "Perfect! Based on your tech stack, here are some tailored technical questions:",
		Farewell:       "Thank you, {{name}}, for your time! Best of luck! 😊",
		ThankYou:       "🎉 Thank you, {{name}}! Our TalentScout team will review your responses and contact you soon. Have a great day! 😊",
		Fallback:       "Sorry, I didn’t understand that. Could you please rephrase or provide the requested detail?",
		InvalidInput:   "Invalid input, please re-enter.",
		LanguagePrompt: "Please specify a supported language (e.g., Spanish, French) or continue in English.",
		LanguageAccepted: map[string]string{
			"Spanish": "¡Entendido! Continuaremos en español. Por favor, responde a la pregunta anterior.",
			"French":  "Compris ! Nous continuerons en français. Veuillez répondre à la question précédente.",
			"English": "Understood! We'll continue in English. Please answer the previous question.",
		},
	}
}

// defaultName addresses candidates who have not given their name yet.
const defaultName = "Candidate"

func personalize(tmpl, name string) string {
	if name == "" {
		name = defaultName
	}
	return strings.ReplaceAll(tmpl, "{{name}}", name)
}

// languages maps the lowercase keyword found in a directive to the
// language name stored on the session. Checked in order.
var languages = []struct {
	keyword string
	name    string
}{
	{"spanish", "Spanish"},
	{"french", "French"},
	{"english", "English"},
}
