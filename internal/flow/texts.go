package flow

import "fmt"

const (
	textHelp = "Это бот адвоката.\n\n" +
		"Доступные команды:\n" +
		"/start – главное меню\n" +
		"/emergency – экстренный вызов адвоката\n" +
		"/consultation – записаться на консультацию\n" +
		"/about – об адвокате\n" +
		"/cancel – отменить текущий диалог\n" +
		"/help – показать это сообщение"
	textUseMenu          = "Пожалуйста, выберите действие в меню ниже."
	textUseButtons       = "Пожалуйста, воспользуйтесь кнопками под сообщением."
	textWrongInput       = "Здесь нужен другой ответ."
	textUnknownOption    = "Такого варианта нет, выберите один из предложенных."
	textNoBack           = "Вернуться назад на этом шаге нельзя."
	textCancelled        = "Диалог отменён. Если захотите начать заново – отправьте /start."
	textDoneConsultation = "✅ Спасибо! Ваша заявка на консультацию передана адвокату.\n" +
		"С вами свяжутся по указанным контактам для подтверждения времени."
	textDoneEmergency = "🚨 Экстренная заявка передана адвокату.\n" +
		"Оставайтесь на связи, с вами свяжутся в ближайшее время."
)

func greeting(firstName string) string {
	if firstName == "" {
		firstName = "друг"
	}
	return fmt.Sprintf("Здравствуйте, %s!\n\n"+
		"Вы написали боту адвоката. Здесь можно вызвать адвоката в экстренной ситуации "+
		"или записаться на консультацию.\n\nЧто вас интересует?", firstName)
}

var (
	buttonCancel   = Button{Label: "✖️ Отмена", Action: Action{Kind: ActionCancel}}
	buttonBack     = Button{Label: "⬅️ Назад", Action: Action{Kind: ActionBack}}
	buttonMainMenu = Button{Label: "🏠 Главное меню", Action: Action{Kind: ActionMainMenu}}
)

func mainMenu() [][]Button {
	return [][]Button{
		{{Label: "🚨 Экстренный вызов", Action: Action{Kind: ActionOpenEmergency}}},
		{{Label: "📅 Записаться на консультацию", Action: Action{Kind: ActionOpenConsultation}}},
		{{Label: "ℹ️ Об адвокате", Action: Action{Kind: ActionAbout}}},
	}
}

// NavAction maps a navigation button label back to its action, for
// transports that render navigation as plain keyboard text.
func NavAction(label string) (Action, bool) {
	for _, b := range []Button{buttonCancel, buttonBack, buttonMainMenu} {
		if b.Label == label {
			return b.Action, true
		}
	}
	return Action{}, false
}
