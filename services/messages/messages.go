package messages

import (
	"strings"

	"salonbot/models"
)

// BusinessContext selects contextual template variations.
type BusinessContext struct {
	BusinessType string
	Tone         string
}

// GetMessage renders a template for a language. Every required parameter
// must be present: a missing one fails with a ValidationError rather than
// leaking a half-interpolated string into the channel. Safe for concurrent
// use; the registry is read-only after init.
func GetMessage(key, language string, params map[string]string) (string, error) {
	tpl, err := lookup(key, language)
	if err != nil {
		return "", err
	}
	if err := ValidateParameters(key, params); err != nil {
		return "", err
	}
	return interpolate(tpl.Text, params), nil
}

// GetContextualMessage renders the most specific variation available:
// business-type+tone, then business-type, then the generic template.
func GetContextualMessage(key, language string, bctx BusinessContext, params map[string]string) (string, error) {
	if byVariant, ok := variations[key]; ok {
		lang := normalizeLanguage(key, language)
		if bctx.Tone != "" {
			if texts, ok := byVariant[bctx.BusinessType+"|"+bctx.Tone]; ok {
				if text, ok := texts[lang]; ok {
					if err := ValidateParameters(key, params); err != nil {
						return "", err
					}
					return interpolate(text, params), nil
				}
			}
		}
		if texts, ok := byVariant[bctx.BusinessType]; ok {
			if text, ok := texts[lang]; ok {
				if err := ValidateParameters(key, params); err != nil {
					return "", err
				}
				return interpolate(text, params), nil
			}
		}
	}
	return GetMessage(key, language, params)
}

// ValidateParameters checks that params covers the template's required set.
func ValidateParameters(key string, params map[string]string) error {
	byLang, ok := registry[key]
	if !ok {
		return &ValidationError{Key: key}
	}
	tpl := byLang[DefaultLanguage]
	var missing []string
	for _, p := range tpl.Params {
		if _, ok := params[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Key: key, Missing: missing}
	}
	return nil
}

// GetEmotion returns the emotion tag for a message key, or neutral for an
// unknown key.
func GetEmotion(key string) string {
	if byLang, ok := registry[key]; ok {
		return byLang[DefaultLanguage].Emotion
	}
	return EmotionNeutral
}

// GetEmoji returns the emoji attached to a message key, if any.
func GetEmoji(key string) string {
	if byLang, ok := registry[key]; ok {
		return byLang[DefaultLanguage].Emoji
	}
	return ""
}

// FormatWithLimits truncates a message to maxLines whole lines. It never
// cuts mid-sentence and always keeps the first line, even for maxLines <= 1.
func FormatWithLimits(message string, maxLines int) string {
	lines := strings.Split(message, "\n")
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) <= maxLines {
		return message
	}
	return strings.Join(lines[:maxLines], "\n")
}

// lookup resolves (key, language) with the default-language fallback.
func lookup(key, language string) (models.MessageTemplate, error) {
	byLang, ok := registry[key]
	if !ok {
		return models.MessageTemplate{}, &ValidationError{Key: key}
	}
	tpl, ok := byLang[language]
	if !ok {
		tpl = byLang[DefaultLanguage]
	}
	return tpl, nil
}

// normalizeLanguage maps an unsupported code to the default, keyed on what
// the catalog actually carries for that message.
func normalizeLanguage(key, language string) string {
	if byLang, ok := registry[key]; ok {
		if _, ok := byLang[language]; ok {
			return language
		}
	}
	return DefaultLanguage
}

// interpolate substitutes {{name}} placeholders. Unknown placeholders are
// left untouched; ValidateParameters has already guaranteed the required
// ones exist.
func interpolate(text string, params map[string]string) string {
	for name, value := range params {
		text = strings.ReplaceAll(text, "{{"+name+"}}", value)
	}
	return text
}
