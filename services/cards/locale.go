package cards

import (
	"fmt"
	"time"
)

// locale carries the per-language rendering data. Supported languages are a
// data concern: adding one is a new table entry, not a new branch.
type locale struct {
	weekdaysShort [7]string // indexed by time.Weekday
	weekdaysLong  [7]string
	months        [12]string
	currency      string
	// dateFormat renders "2 Sep" style day+month for section headers.
	dateFormat func(l *locale, t time.Time) string
}

var locales = map[string]*locale{
	"en": {
		weekdaysShort: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		weekdaysLong:  [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		months:        [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		currency:      "$",
		dateFormat: func(l *locale, t time.Time) string {
			return fmt.Sprintf("%s %d %s", l.weekdaysShort[t.Weekday()], t.Day(), l.months[t.Month()-1])
		},
	},
	"ru": {
		weekdaysShort: [7]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"},
		weekdaysLong:  [7]string{"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота"},
		months:        [12]string{"янв", "фев", "мар", "апр", "мая", "июн", "июл", "авг", "сен", "окт", "ноя", "дек"},
		currency:      "₽",
		dateFormat: func(l *locale, t time.Time) string {
			return fmt.Sprintf("%s %d %s", l.weekdaysShort[t.Weekday()], t.Day(), l.months[t.Month()-1])
		},
	},
	"es": {
		weekdaysShort: [7]string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"},
		weekdaysLong:  [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"},
		months:        [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"},
		currency:      "€",
		dateFormat: func(l *locale, t time.Time) string {
			return fmt.Sprintf("%s %d %s", l.weekdaysShort[t.Weekday()], t.Day(), l.months[t.Month()-1])
		},
	},
}

const defaultLanguage = "en"

// localeFor never fails: an unknown-but-plausible language tag gets the
// default locale, not an error.
func localeFor(language string) *locale {
	if l, ok := locales[language]; ok {
		return l
	}
	return locales[defaultLanguage]
}

// listButtonLabels localize the list-opener button.
var listButtonLabels = map[string]string{
	"en": "Choose a time",
	"ru": "Выбрать время",
	"es": "Elegir hora",
}

func listButtonLabel(language string) string {
	if label, ok := listButtonLabels[language]; ok {
		return label
	}
	return listButtonLabels[defaultLanguage]
}

// confirmLabels and changeLabels localize the confirmation actions.
var confirmLabels = map[string]string{"en": "Confirm", "ru": "Подтвердить", "es": "Confirmar"}
var changeLabels = map[string]string{"en": "Change", "ru": "Изменить", "es": "Cambiar"}

func actionLabel(table map[string]string, language string) string {
	if label, ok := table[language]; ok {
		return label
	}
	return table[defaultLanguage]
}
