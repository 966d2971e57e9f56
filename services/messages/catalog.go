package messages

import "salonbot/models"

// DefaultLanguage is the fallback for unsupported language codes.
const DefaultLanguage = "en"

// Message keys used across the conversation flow.
const (
	KeyGreeting            = "GREETING"
	KeyAskService          = "ASK_SERVICE"
	KeyAskDate             = "ASK_DATE"
	KeySlotTaken           = "SLOT_TAKEN"
	KeySlotsFound          = "SLOTS_FOUND"
	KeyAlternativesIntro   = "ALTERNATIVES_INTRO"
	KeyNoSlotsDay          = "NO_SLOTS_DAY"
	KeyNoSlotsWeek         = "NO_SLOTS_WEEK"
	KeyPopularTimesIntro   = "POPULAR_TIMES_INTRO"
	KeyConfirmPrompt       = "CONFIRM_PROMPT"
	KeyBookingConfirmed    = "BOOKING_CONFIRMED"
	KeyConversationRestart = "CONVERSATION_RESTARTED"
	KeyGenericApology      = "GENERIC_APOLOGY"
)

// Emotion tags attached to templates; the card layer may pick emoji or
// phrasing based on them.
const (
	EmotionFriendly   = "friendly"
	EmotionEmpathetic = "empathetic"
	EmotionExcited    = "excited"
	EmotionNeutral    = "neutral"
	EmotionApologetic = "apologetic"
)

type templateDef struct {
	params   []string
	emotion  string
	emoji    string
	maxLines int
	text     map[string]string // language -> text with {{param}} placeholders
}

// catalog is the static template source. It is turned into the read-only
// registry at package init; no per-call I/O ever happens.
var catalog = map[string]templateDef{
	KeyGreeting: {
		emotion: EmotionFriendly, emoji: "👋",
		text: map[string]string{
			"en": "Hi! I can help you book an appointment.",
			"ru": "Здравствуйте! Я помогу вам записаться.",
			"es": "¡Hola! Puedo ayudarte a reservar una cita.",
		},
	},
	KeyAskService: {
		emotion: EmotionFriendly,
		text: map[string]string{
			"en": "Which service would you like to book?",
			"ru": "Какую услугу вы хотите забронировать?",
			"es": "¿Qué servicio te gustaría reservar?",
		},
	},
	KeyAskDate: {
		params:  []string{"service"},
		emotion: EmotionFriendly,
		text: map[string]string{
			"en": "When would you like to come in for {{service}}?",
			"ru": "Когда вам удобно прийти на {{service}}?",
			"es": "¿Cuándo te gustaría venir para {{service}}?",
		},
	},
	KeySlotTaken: {
		params:  []string{"time", "day"},
		emotion: EmotionEmpathetic, emoji: "😔",
		text: map[string]string{
			"en": "Sorry, {{time}} on {{day}} is already taken.",
			"ru": "Извините, {{time}} в {{day}} уже занято.",
			"es": "Lo siento, {{time}} el {{day}} ya está ocupado.",
		},
	},
	KeySlotsFound: {
		params:  []string{"count"},
		emotion: EmotionExcited, emoji: "✨",
		text: map[string]string{
			"en": "Great news — I found {{count}} available times for you.",
			"ru": "Отличные новости — я нашёл {{count}} свободных времени.",
			"es": "Buenas noticias: encontré {{count}} horarios disponibles.",
		},
	},
	KeyAlternativesIntro: {
		params:  []string{"time"},
		emotion: EmotionEmpathetic,
		text: map[string]string{
			"en": "{{time}} is not free, but here are the closest options:",
			"ru": "{{time}} занято, но вот ближайшие варианты:",
			"es": "{{time}} no está libre, pero estas son las opciones más cercanas:",
		},
	},
	KeyNoSlotsDay: {
		params:  []string{"day"},
		emotion: EmotionEmpathetic, emoji: "😔",
		text: map[string]string{
			"en": "Unfortunately {{day}} is fully booked.",
			"ru": "К сожалению, на {{day}} всё занято.",
			"es": "Lamentablemente el {{day}} está completo.",
		},
	},
	KeyNoSlotsWeek: {
		emotion: EmotionApologetic, emoji: "😔",
		text: map[string]string{
			"en": "This week is fully booked. Shall we look at next week?",
			"ru": "На этой неделе всё занято. Посмотрим следующую?",
			"es": "Esta semana está completa. ¿Miramos la próxima?",
		},
	},
	KeyPopularTimesIntro: {
		emotion: EmotionFriendly, emoji: "⭐",
		text: map[string]string{
			"en": "Here are our most popular times:",
			"ru": "Вот самое популярное время у наших клиентов:",
			"es": "Estos son nuestros horarios más populares:",
		},
	},
	KeyConfirmPrompt: {
		params:  []string{"day", "time", "master"},
		emotion: EmotionNeutral,
		text: map[string]string{
			"en": "Book {{day}} at {{time}} with {{master}}?",
			"ru": "Записать вас на {{day}} в {{time}} к {{master}}?",
			"es": "¿Reservo el {{day}} a las {{time}} con {{master}}?",
		},
	},
	KeyBookingConfirmed: {
		params:  []string{"day", "time"},
		emotion: EmotionExcited, emoji: "🎉",
		text: map[string]string{
			"en": "All set! See you {{day}} at {{time}}.",
			"ru": "Готово! Ждём вас {{day}} в {{time}}.",
			"es": "¡Listo! Te esperamos el {{day}} a las {{time}}.",
		},
	},
	KeyConversationRestart: {
		emotion: EmotionApologetic,
		text: map[string]string{
			"en": "Let's start over. Which service would you like to book?",
			"ru": "Давайте начнём сначала. Какую услугу вы хотите забронировать?",
			"es": "Empecemos de nuevo. ¿Qué servicio te gustaría reservar?",
		},
	},
	KeyGenericApology: {
		emotion: EmotionApologetic, emoji: "🙏",
		text: map[string]string{
			"en": "Sorry, something went wrong on our side. Please try again in a moment.",
			"ru": "Извините, у нас что-то пошло не так. Попробуйте ещё раз чуть позже.",
			"es": "Lo sentimos, algo salió mal. Inténtalo de nuevo en un momento.",
		},
	},
}

// variations holds business-type and tone specific overrides for a message
// key. Lookup order: type+tone, then type, then the generic catalog entry.
// Unknown combinations fall through silently.
var variations = map[string]map[string]map[string]string{
	KeyGreeting: {
		"barbershop": {
			"en": "Hey! Ready for a fresh cut? I can get you booked in.",
			"ru": "Привет! Готовы к свежей стрижке? Я помогу записаться.",
			"es": "¡Hey! ¿Listo para un corte? Te ayudo a reservar.",
		},
		"barbershop|casual": {
			"en": "Yo! Let's get you in the chair.",
			"ru": "Привет! Давай подберём тебе время.",
			"es": "¡Qué tal! Vamos a conseguirte un turno.",
		},
		"spa": {
			"en": "Welcome. Let me help you find a moment to relax.",
			"ru": "Добро пожаловать. Помогу вам найти время для отдыха.",
			"es": "Bienvenido. Déjame ayudarte a encontrar un momento para relajarte.",
		},
	},
	KeyPopularTimesIntro: {
		"spa": {
			"en": "Our guests most often choose these times:",
			"ru": "Наши гости чаще всего выбирают это время:",
			"es": "Nuestros clientes suelen elegir estos horarios:",
		},
	},
}

// registry is the immutable lookup built from the catalog at init.
var registry map[string]map[string]models.MessageTemplate

func init() {
	registry = make(map[string]map[string]models.MessageTemplate, len(catalog))
	for key, def := range catalog {
		byLang := make(map[string]models.MessageTemplate, len(def.text))
		for lang, text := range def.text {
			byLang[lang] = models.MessageTemplate{
				Key:      key,
				Language: lang,
				Text:     text,
				Params:   def.params,
				Emotion:  def.emotion,
				Emoji:    def.emoji,
				MaxLines: def.maxLines,
			}
		}
		registry[key] = byLang
	}
}
