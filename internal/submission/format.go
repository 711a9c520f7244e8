package submission

import (
	"fmt"
	"strings"

	"lawyer-bot/internal/store"
)

const notSpecified = "не указано"

// Flow names as carried by Bundle.Flow.
const (
	FlowEmergency    = "emergency"
	FlowConsultation = "consultation"
)

// Field names as carried by Bundle.Fields.
const (
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldCoordinates   = "coordinates"
	FieldArticle       = "article"
	FieldCity          = "city"
	FieldUrgency       = "urgency"
	FieldDescription   = "description"
	FieldPreferredDate = "preferred_date"
	FieldPreferredTime = "preferred_time"
)

type line struct {
	label string
	field string
}

var (
	emergencyLines = []line{
		{"📞 Телефон", FieldPhone},
		{"📍 Адрес", FieldAddress},
		{"🗺 Геолокация", FieldCoordinates},
		{"⚖️ Статья", FieldArticle},
	}
	consultationLines = []line{
		{"🏙 Город", FieldCity},
		{"📞 Телефон", FieldPhone},
		{"⏱ Срочность", FieldUrgency},
		{"⚖️ Статья", FieldArticle},
		{"📅 Дата", FieldPreferredDate},
		{"🕐 Время", FieldPreferredTime},
		{"📝 Описание", FieldDescription},
	}
)

// FormatNotification renders the admin message for a bundle.
func FormatNotification(b Bundle) string {
	var bld strings.Builder
	lines := consultationLines
	switch b.Flow {
	case FlowEmergency:
		bld.WriteString("🚨 ЭКСТРЕННЫЙ ВЫЗОВ\n\n")
		lines = emergencyLines
	default:
		bld.WriteString("📝 Новая заявка на консультацию\n\n")
	}
	bld.WriteString(fmt.Sprintf("👤 Клиент: %s\n", valueOr(b.User.FullName())))
	if b.User.Username != "" {
		bld.WriteString(fmt.Sprintf("🔗 Telegram: @%s\n", b.User.Username))
	}
	bld.WriteString(fmt.Sprintf("🆔 ID: %d\n\n", b.User.ID))
	for _, l := range lines {
		v := b.Fields[l.field]
		if l.field == FieldDescription {
			bld.WriteString(fmt.Sprintf("%s:\n%s\n", l.label, valueOr(v)))
			continue
		}
		bld.WriteString(fmt.Sprintf("%s: %s\n", l.label, valueOr(v)))
	}
	bld.WriteString(fmt.Sprintf("\n#%s · %s", b.Ref(), b.CreatedAt.Format("02.01.2006 15:04")))
	return bld.String()
}

func valueOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

// EmergencyRecord maps a bundle to its persisted form.
func EmergencyRecord(b Bundle) store.EmergencyRecord {
	return store.EmergencyRecord{
		Ref:         b.ID.String(),
		UserID:      b.User.ID,
		Username:    b.User.Username,
		FullName:    b.User.FullName(),
		Phone:       b.Fields[FieldPhone],
		Address:     b.Fields[FieldAddress],
		Coordinates: b.Fields[FieldCoordinates],
		Article:     b.Fields[FieldArticle],
		CreatedAt:   b.CreatedAt,
	}
}

// ConsultationRecord maps a bundle to its persisted form.
func ConsultationRecord(b Bundle) store.ConsultationRecord {
	return store.ConsultationRecord{
		Ref:           b.ID.String(),
		UserID:        b.User.ID,
		Username:      b.User.Username,
		FullName:      b.User.FullName(),
		City:          b.Fields[FieldCity],
		Phone:         b.Fields[FieldPhone],
		Urgency:       b.Fields[FieldUrgency],
		Article:       b.Fields[FieldArticle],
		Description:   b.Fields[FieldDescription],
		PreferredDate: b.Fields[FieldPreferredDate],
		PreferredTime: b.Fields[FieldPreferredTime],
		CreatedAt:     b.CreatedAt,
	}
}
