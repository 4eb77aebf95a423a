package fallback

import (
	"strings"
	"unicode"

	"relieflink/pkg/types"
)

type vocabulary struct {
	// wholeWords matches keywords only on word boundaries. Bengali
	// inflects with suffixes, so it matches substrings instead.
	wholeWords bool
	keywords   map[types.Intent][]string
	templates  map[types.Intent][]string
	suggests   map[types.Intent][]string
}

// Intents are checked in this order; the first with a keyword hit wins.
var intentPriority = []types.Intent{
	types.IntentEmergency,
	types.IntentTrack,
	types.IntentDonate,
	types.IntentRequest,
	types.IntentVolunteer,
	types.IntentThanks,
	types.IntentGreeting,
}

var vocabularies = map[types.Language]vocabulary{
	types.LanguageEnglish: {
		wholeWords: true,
		keywords: map[types.Intent][]string{
			types.IntentEmergency: {"emergency", "urgent", "sos", "trapped", "injured", "dying", "flood", "fire"},
			types.IntentTrack:     {"track", "tracking", "status", "where is", "eta", "arrive", "arriving"},
			types.IntentDonate:    {"donate", "donation", "donating", "contribute", "offer"},
			types.IntentRequest:   {"need", "needs", "request", "require", "shortage", "looking for"},
			types.IntentVolunteer: {"volunteer", "volunteering", "join", "sign up", "deliver for"},
			types.IntentThanks:    {"thank", "thanks", "thank you", "grateful"},
			types.IntentGreeting:  {"hello", "hi", "hey", "good morning", "good evening", "salam", "assalamualaikum"},
		},
		templates: map[types.Intent][]string{
			types.IntentEmergency: {
				"If lives are at risk, call 999 now. I have flagged your message as urgent for the relief team.",
				"Please call the national emergency line 999 first. Tell me your exact location and what you need most.",
			},
			types.IntentTrack: {
				"You can follow your delivery from the tracking page. Share the task ID and I will look up its status.",
				"Deliveries update their location every 30 seconds. Send me the task ID to check where it is.",
			},
			types.IntentDonate: {
				"Thank you for offering help! Tell me what you would like to donate, how much, and where it can be picked up.",
				"Donations make a real difference. Describe the items and quantity and we will find someone who needs them.",
			},
			types.IntentRequest: {
				"We are here to help. Tell me what you need, how many people it is for, and your location.",
				"Please describe the items you need and your area so we can match you with nearby donors.",
			},
			types.IntentVolunteer: {
				"Thank you for volunteering! Share your area and how you travel so we can assign nearby deliveries.",
				"Volunteers keep relief moving. Tell me your location and vehicle type to get started.",
			},
			types.IntentThanks: {
				"You're welcome! Let me know if there is anything else I can do.",
				"Happy to help. Stay safe!",
			},
			types.IntentGreeting: {
				"Hello! I can help you donate, request supplies, volunteer, or track a delivery.",
				"Hi there! How can I help with relief today?",
			},
			types.IntentHelp: {
				"I can help you donate items, request supplies, volunteer, or track a delivery. What would you like to do?",
				"I didn't quite catch that. You can ask me to donate, request help, volunteer or track a delivery.",
			},
		},
		suggests: map[types.Intent][]string{
			types.IntentEmergency: {"Share my location", "Request medicine", "Request water"},
			types.IntentTrack:     {"Track my delivery", "Contact my volunteer"},
			types.IntentDonate:    {"Donate food", "Donate clothing", "Donate medicine"},
			types.IntentRequest:   {"Request food", "Request water", "Request shelter"},
			types.IntentVolunteer: {"Sign up as a volunteer", "See open deliveries"},
			types.IntentThanks:    {"Make a donation", "Volunteer"},
			types.IntentGreeting:  {"Donate items", "Request help", "Volunteer"},
			types.IntentHelp:      {"Donate items", "Request help", "Track a delivery"},
		},
	},
	types.LanguageBengali: {
		keywords: map[types.Intent][]string{
			types.IntentEmergency: {"জরুরি", "বিপদ", "আটকে", "আহত", "বন্যা", "আগুন", "বাঁচাও"},
			types.IntentTrack:     {"ট্র্যাক", "কোথায়", "অবস্থা", "ডেলিভারি"},
			types.IntentDonate:    {"দান", "অনুদান", "দিতে চাই", "দিতে পারি"},
			types.IntentRequest:   {"প্রয়োজন", "দরকার", "লাগবে", "চাই"},
			types.IntentVolunteer: {"স্বেচ্ছাসেবক", "যোগ দিতে", "স্বেচ্ছাসেবী"},
			types.IntentThanks:    {"ধন্যবাদ", "কৃতজ্ঞ"},
			types.IntentGreeting:  {"হ্যালো", "নমস্কার", "আসসালামু আলাইকুম", "সালাম"},
		},
		templates: map[types.Intent][]string{
			types.IntentEmergency: {
				"জীবনের ঝুঁকি থাকলে এখনই ৯৯৯ নম্বরে কল করুন। আপনার বার্তাটি জরুরি হিসেবে চিহ্নিত করা হয়েছে।",
				"অনুগ্রহ করে প্রথমে ৯৯৯ নম্বরে কল করুন। আপনার সঠিক অবস্থান ও সবচেয়ে জরুরি প্রয়োজন জানান।",
			},
			types.IntentTrack: {
				"ট্র্যাকিং পেজ থেকে আপনার ডেলিভারি দেখতে পারবেন। টাস্ক আইডি দিন, আমি অবস্থা দেখে দিচ্ছি।",
			},
			types.IntentDonate: {
				"সাহায্যের জন্য ধন্যবাদ! কী দান করতে চান, কতটুকু এবং কোথা থেকে নেওয়া যাবে জানান।",
				"আপনার দান অনেক বড় পার্থক্য গড়ে। জিনিস ও পরিমাণ জানান, আমরা প্রয়োজনীয় মানুষ খুঁজে দেব।",
			},
			types.IntentRequest: {
				"আমরা সাহায্য করতে প্রস্তুত। কী প্রয়োজন, কতজনের জন্য এবং আপনার অবস্থান জানান।",
			},
			types.IntentVolunteer: {
				"স্বেচ্ছাসেবক হওয়ার জন্য ধন্যবাদ! আপনার এলাকা ও যানবাহনের ধরন জানান।",
			},
			types.IntentThanks: {
				"আপনাকেও ধন্যবাদ! আর কিছু লাগলে জানাবেন।",
				"সাহায্য করতে পেরে খুশি। নিরাপদে থাকুন!",
			},
			types.IntentGreeting: {
				"হ্যালো! আমি দান, সাহায্যের অনুরোধ, স্বেচ্ছাসেবা বা ডেলিভারি ট্র্যাকিংয়ে সাহায্য করতে পারি।",
				"নমস্কার! আজ ত্রাণ বিষয়ে কীভাবে সাহায্য করতে পারি?",
			},
			types.IntentHelp: {
				"আমি দান, সাহায্যের অনুরোধ, স্বেচ্ছাসেবা বা ডেলিভারি ট্র্যাকিংয়ে সাহায্য করতে পারি। আপনি কী করতে চান?",
			},
		},
		suggests: map[types.Intent][]string{
			types.IntentEmergency: {"আমার অবস্থান পাঠান", "ওষুধ প্রয়োজন", "পানি প্রয়োজন"},
			types.IntentTrack:     {"ডেলিভারি ট্র্যাক করুন", "স্বেচ্ছাসেবকের সাথে যোগাযোগ"},
			types.IntentDonate:    {"খাবার দান", "কাপড় দান", "ওষুধ দান"},
			types.IntentRequest:   {"খাবার প্রয়োজন", "পানি প্রয়োজন", "আশ্রয় প্রয়োজন"},
			types.IntentVolunteer: {"স্বেচ্ছাসেবক হিসেবে যোগ দিন", "খোলা ডেলিভারি দেখুন"},
			types.IntentThanks:    {"দান করুন", "স্বেচ্ছাসেবক হোন"},
			types.IntentGreeting:  {"দান করুন", "সাহায্য চান", "স্বেচ্ছাসেবক হোন"},
			types.IntentHelp:      {"দান করুন", "সাহায্য চান", "ডেলিভারি ট্র্যাক করুন"},
		},
	},
}

// Converse classifies the message by keyword and answers from a fixed set
// of templates. Only the template within the chosen intent is random.
func (e *Engine) Converse(req types.ConversationRequest) types.ConversationReply {
	lang := e.languageFor(req)
	vocab, ok := vocabularies[lang]
	if !ok {
		vocab = vocabularies[types.LanguageEnglish]
	}

	intent := classify(vocab, req.Message)

	templates := vocab.templates[intent]
	response := templates[0]
	if len(templates) > 1 {
		response = templates[e.rng.IntN(len(templates))]
	}

	suggestions := append([]string(nil), vocab.suggests[intent]...)

	return types.ConversationReply{
		Response:    response,
		Intent:      intent,
		Suggestions: suggestions,
	}
}

func (e *Engine) languageFor(req types.ConversationRequest) types.Language {
	return ResolveLanguage(req.Language, req.Message, e.language)
}

// ResolveLanguage picks the reply language: the requested one, else Bengali
// when the message contains Bengali script, else def.
func ResolveLanguage(requested types.Language, message string, def types.Language) types.Language {
	if requested != "" {
		return requested
	}
	for _, r := range message {
		if unicode.In(r, unicode.Bengali) {
			return types.LanguageBengali
		}
	}
	return def
}

// HelpReply is the first help template for lang with its suggestions.
func HelpReply(lang types.Language) types.ConversationReply {
	vocab, ok := vocabularies[lang]
	if !ok {
		vocab = vocabularies[types.LanguageEnglish]
	}
	return types.ConversationReply{
		Response:    vocab.templates[types.IntentHelp][0],
		Intent:      types.IntentHelp,
		Suggestions: append([]string(nil), vocab.suggests[types.IntentHelp]...),
	}
}

// Classify reports the intent the fallback vocabulary assigns to message.
func Classify(lang types.Language, message string) types.Intent {
	vocab, ok := vocabularies[lang]
	if !ok {
		vocab = vocabularies[types.LanguageEnglish]
	}
	return classify(vocab, message)
}

func classify(vocab vocabulary, message string) types.Intent {
	text := normalizeMessage(message)

	for _, intent := range intentPriority {
		for _, kw := range vocab.keywords[intent] {
			if containsKeyword(text, kw, vocab.wholeWords) {
				return intent
			}
		}
	}

	return types.IntentHelp
}

// normalizeMessage lowercases and replaces punctuation with spaces, padding
// both ends so whole-word checks can look for " kw ".
func normalizeMessage(message string) string {
	var b strings.Builder
	b.Grow(len(message) + 2)
	b.WriteByte(' ')

	space := true
	for _, r := range strings.ToLower(message) {
		if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}

	return b.String()
}

func containsKeyword(text, kw string, wholeWords bool) bool {
	if wholeWords {
		return strings.Contains(text, " "+kw+" ")
	}
	return strings.Contains(text, kw)
}
