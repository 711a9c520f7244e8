package flow

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"lawyer-bot/internal/submission"
)

// Field names stored in Session.Fields and Bundle.Fields.
const (
	FieldPhone         = submission.FieldPhone
	FieldAddress       = submission.FieldAddress
	FieldCoordinates   = submission.FieldCoordinates
	FieldArticle       = submission.FieldArticle
	FieldCity          = submission.FieldCity
	FieldUrgency       = submission.FieldUrgency
	FieldDescription   = submission.FieldDescription
	FieldPreferredDate = submission.FieldPreferredDate
	FieldPreferredTime = submission.FieldPreferredTime
)

const (
	StepEmergencyMenu          StepName = "emergency_menu"
	StepEmergencyPhone         StepName = "emergency_phone"
	StepEmergencyAddress       StepName = "emergency_address"
	StepEmergencyArticle       StepName = "emergency_article"
	StepEmergencyArticleCustom StepName = "emergency_article_custom"

	StepCity          StepName = "city"
	StepPhone         StepName = "phone"
	StepUrgency       StepName = "urgency"
	StepArticle       StepName = "article"
	StepArticleCustom StepName = "article_custom"
	StepDescription   StepName = "description"
	StepDate          StepName = "date"
	StepTime          StepName = "time"
)

// Emergency menu choices.
const (
	MenuPhone   = "phone"
	MenuAddress = "address"
	MenuArticle = "article"
	MenuSubmit  = "submit"
)

// ArticleOther switches to free-text article entry.
const ArticleOther = "Другая"

var (
	articles     = []string{"105", "111", "158", "159", "228", "264", ArticleOther}
	urgencies    = []string{"Срочно", "В течение недели", "Не срочно"}
	timeSlots    = []string{"10:00-12:00", "12:00-14:00", "14:00-16:00", "16:00-18:00"}
	weekdaysRu   = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	bookingDays  = 7
	dateLayout   = "02.01.2006"
	errBadPhone  = errors.New("Похоже, это не номер телефона. Пример: +7 999 000-11-11")
	errEmptyText = errors.New("Сообщение пустое, попробуйте ещё раз.")
)

// Builtin returns the flows the bot serves.
func Builtin() map[Name]*Definition {
	return map[Name]*Definition{
		Emergency:    emergencyDefinition(),
		Consultation: consultationDefinition(),
	}
}

func emergencyDefinition() *Definition {
	toMenu := func(string) StepName { return StepEmergencyMenu }
	return &Definition{
		Name:  Emergency,
		Title: "Экстренный вызов",
		First: StepEmergencyMenu,
		Steps: map[StepName]Step{
			StepEmergencyMenu: {
				Name:    StepEmergencyMenu,
				Accepts: map[InputKind]string{KindChoice: ""},
				Prompt:  emergencyMenuPrompt,
				Options: emergencyMenuOptions,
				Next: func(v string) StepName {
					switch v {
					case MenuPhone:
						return StepEmergencyPhone
					case MenuAddress:
						return StepEmergencyAddress
					case MenuArticle:
						return StepEmergencyArticle
					case MenuSubmit:
						return Terminal
					}
					return StepEmergencyMenu
				},
			},
			StepEmergencyPhone: {
				Name:     StepEmergencyPhone,
				Accepts:  map[InputKind]string{KindText: FieldPhone, KindContact: FieldPhone},
				Prompt:   static("📞 Отправьте номер телефона кнопкой ниже или введите его вручную."),
				Validate: validatePhone,
				Next:     toMenu,
				Back:     StepEmergencyMenu,
			},
			StepEmergencyAddress: {
				Name:     StepEmergencyAddress,
				Accepts:  map[InputKind]string{KindText: FieldAddress, KindLocation: FieldCoordinates},
				Prompt:   static("📍 Отправьте геолокацию кнопкой ниже или напишите адрес, где вы находитесь."),
				Validate: validateText,
				Next:     toMenu,
				Back:     StepEmergencyMenu,
			},
			StepEmergencyArticle: {
				Name:    StepEmergencyArticle,
				Accepts: map[InputKind]string{KindChoice: FieldArticle},
				Prompt:  static("⚖️ Выберите статью УК РФ, по которой возникла ситуация:"),
				Options: articleOptions,
				Keep:    notOther,
				Next: func(v string) StepName {
					if v == ArticleOther {
						return StepEmergencyArticleCustom
					}
					return StepEmergencyMenu
				},
				Back: StepEmergencyMenu,
			},
			StepEmergencyArticleCustom: {
				Name:     StepEmergencyArticleCustom,
				Accepts:  map[InputKind]string{KindText: FieldArticle},
				Prompt:   static("✍️ Напишите номер статьи или кратко опишите ситуацию:"),
				Validate: validateText,
				Next:     toMenu,
				Back:     StepEmergencyArticle,
			},
		},
	}
}

func consultationDefinition() *Definition {
	return &Definition{
		Name:  Consultation,
		Title: "Запись на консультацию",
		First: StepCity,
		Steps: map[StepName]Step{
			StepCity: {
				Name:     StepCity,
				Accepts:  map[InputKind]string{KindText: FieldCity},
				Prompt:   static("🏙 В каком городе вам нужна консультация?"),
				Validate: validateText,
				Next:     goTo(StepPhone),
			},
			StepPhone: {
				Name:     StepPhone,
				Accepts:  map[InputKind]string{KindText: FieldPhone, KindContact: FieldPhone},
				Prompt:   static("📞 Оставьте номер телефона для связи: нажмите кнопку ниже или введите его вручную."),
				Validate: validatePhone,
				Next:     goTo(StepUrgency),
			},
			StepUrgency: {
				Name:    StepUrgency,
				Accepts: map[InputKind]string{KindChoice: FieldUrgency},
				Prompt:  static("⏱ Насколько срочно вам нужна помощь?"),
				Options: fixedOptions(urgencies),
				Next:    goTo(StepArticle),
			},
			StepArticle: {
				Name:    StepArticle,
				Accepts: map[InputKind]string{KindChoice: FieldArticle},
				Prompt:  static("⚖️ Выберите статью УК РФ, к которой относится ваш вопрос:"),
				Options: articleOptions,
				Keep:    notOther,
				Next: func(v string) StepName {
					if v == ArticleOther {
						return StepArticleCustom
					}
					return StepDescription
				},
			},
			StepArticleCustom: {
				Name:     StepArticleCustom,
				Accepts:  map[InputKind]string{KindText: FieldArticle},
				Prompt:   static("✍️ Напишите номер статьи или кратко опишите, к чему относится вопрос:"),
				Validate: validateText,
				Next:     goTo(StepDescription),
				Back:     StepArticle,
			},
			StepDescription: {
				Name:     StepDescription,
				Accepts:  map[InputKind]string{KindText: FieldDescription},
				Prompt:   static("📝 Опишите, пожалуйста, вашу ситуацию. Не указывайте лишних персональных данных, только то, что необходимо."),
				Validate: validateText,
				Next:     goTo(StepDate),
			},
			StepDate: {
				Name:    StepDate,
				Accepts: map[InputKind]string{KindChoice: FieldPreferredDate},
				Prompt:  static("📅 Выберите удобную дату консультации:"),
				Options: dateOptions,
				Next:    goTo(StepTime),
			},
			StepTime: {
				Name:    StepTime,
				Accepts: map[InputKind]string{KindChoice: FieldPreferredTime},
				Prompt:  static("🕐 Выберите удобное время:"),
				Options: fixedOptions(timeSlots),
				Next:    goTo(Terminal),
			},
		},
	}
}

// notOther leaves the article untouched until the custom text arrives.
func notOther(v string) bool { return v != ArticleOther }

func static(text string) func(map[string]string) string {
	return func(map[string]string) string { return text }
}

func goTo(next StepName) func(string) StepName {
	return func(string) StepName { return next }
}

func fixedOptions(values []string) func(map[string]string, time.Time) []Option {
	return func(map[string]string, time.Time) []Option {
		out := make([]Option, 0, len(values))
		for _, v := range values {
			out = append(out, Option{Label: v, Value: v})
		}
		return out
	}
}

func articleOptions(fields map[string]string, now time.Time) []Option {
	out := fixedOptions(articles)(fields, now)
	for i := range out {
		if out[i].Value != ArticleOther {
			out[i].Label = "ст. " + out[i].Value
		}
	}
	return out
}

// dateOptions offers the next bookingDays days starting tomorrow.
func dateOptions(_ map[string]string, now time.Time) []Option {
	out := make([]Option, 0, bookingDays)
	for i := 1; i <= bookingDays; i++ {
		d := now.AddDate(0, 0, i)
		out = append(out, Option{
			Label: fmt.Sprintf("%s, %s", weekdaysRu[d.Weekday()], d.Format("02.01")),
			Value: d.Format(dateLayout),
		})
	}
	return out
}

// DateValue formats a day the way the date step stores it.
func DateValue(t time.Time) string { return t.Format(dateLayout) }

func emergencyMenuPrompt(fields map[string]string) string {
	var b strings.Builder
	b.WriteString("🚨 Экстренный вызов адвоката\n\n")
	b.WriteString("Заполните то, что можете, и нажмите «Отправить». Адвокат свяжется с вами как можно скорее.\n\n")
	b.WriteString(fmt.Sprintf("📞 Телефон: %s\n", orDash(fields[FieldPhone])))
	addr := fields[FieldAddress]
	if c := fields[FieldCoordinates]; c != "" {
		if addr != "" {
			addr += "; "
		}
		addr += "геолокация " + c
	}
	b.WriteString(fmt.Sprintf("📍 Адрес: %s\n", orDash(addr)))
	b.WriteString(fmt.Sprintf("⚖️ Статья: %s", orDash(fields[FieldArticle])))
	return b.String()
}

func emergencyMenuOptions(fields map[string]string, _ time.Time) []Option {
	return []Option{
		{Label: check(fields[FieldPhone] != "") + " Телефон", Value: MenuPhone},
		{Label: check(fields[FieldAddress] != "" || fields[FieldCoordinates] != "") + " Адрес / геолокация", Value: MenuAddress},
		{Label: check(fields[FieldArticle] != "") + " Статья", Value: MenuArticle},
		{Label: "🚀 Отправить", Value: MenuSubmit},
	}
}

func check(done bool) string {
	if done {
		return "✅"
	}
	return "⬜"
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func validateText(v string) error {
	if strings.TrimSpace(v) == "" {
		return errEmptyText
	}
	return nil
}

func validatePhone(v string) error {
	digits := 0
	for _, r := range v {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == '(' || r == ')' || r == ' ':
		default:
			return errBadPhone
		}
	}
	if digits < 6 || digits > 15 {
		return errBadPhone
	}
	return nil
}
