package types

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageBengali Language = "bn"
)

type Intent string

const (
	IntentGreeting  Intent = "greeting"
	IntentEmergency Intent = "emergency"
	IntentDonate    Intent = "donate"
	IntentRequest   Intent = "request"
	IntentTrack     Intent = "track"
	IntentVolunteer Intent = "volunteer"
	IntentThanks    Intent = "thanks"
	IntentHelp      Intent = "help"
)

type ConversationRequest struct {
	Message  string            `json:"message"`
	Language Language          `json:"language,omitempty"`
	Context  map[string]string `json:"context,omitempty"`
}

type ConversationReply struct {
	Response    string   `json:"response"`
	Intent      Intent   `json:"intent,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}
