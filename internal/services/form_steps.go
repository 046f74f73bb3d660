package services

import "unicode/utf8"

// Step kinds.
const (
	StepText  = "text"
	StepPhoto = "photo"
)

// MinQualityAnswerLen is the floor for answers that need more than one word
// (previous clan, goals, motivation).
const MinQualityAnswerLen = 20

// FormStep is one questionnaire step: what to ask, and how to validate the
// reply. The order of FormSteps is the order the form runs in and is fixed.
type FormStep struct {
	Key    string
	Prompt string
	Kind   string
	MinLen int
}

var FormSteps = []FormStep{
	{Key: "photo", Prompt: "1️⃣ Отправь **Скриншот** своей статистики (одним фото):", Kind: StepPhoto},
	{Key: "nick", Prompt: "2️⃣ Твой **Имя / Ник** в игре:", Kind: StepText},
	{Key: "timezone", Prompt: "3️⃣ Твой **Часовой пояс** (например, МСК+2):", Kind: StepText},
	{Key: "friends", Prompt: "4️⃣ Есть ли у тебя **Друзья** в нашем клане?", Kind: StepText},
	{Key: "old_clan", Prompt: "5️⃣ Предыдущий клан и **причина ухода**:", Kind: StepText, MinLen: MinQualityAnswerLen},
	{Key: "goals", Prompt: "6️⃣ Цели и планы на развитие:", Kind: StepText, MinLen: MinQualityAnswerLen},
	{Key: "why_us", Prompt: "7️⃣ Почему именно наш клан?", Kind: StepText, MinLen: MinQualityAnswerLen},
	{Key: "leader_role", Prompt: "8️⃣ Готов взять роль **руководителя** в будущем?", Kind: StepText},
	{Key: "experience", Prompt: "9️⃣ Как давно играешь?", Kind: StepText},
}

// StepInput is one reply from the applicant: either text or a photo
// reference, depending on what the message carried.
type StepInput struct {
	Text     string
	PhotoRef string
}

// ValidateStep applies the step's rule to the input. A non-empty return is
// the re-prompt explanation; empty means accepted. Validation is pure: no
// state, no side effects.
func ValidateStep(step FormStep, in StepInput) string {
	switch step.Kind {
	case StepPhoto:
		if in.PhotoRef == "" {
			return "Нужно именно фото. Отправь скриншот одним изображением."
		}
		return ""
	default:
		if in.PhotoRef != "" || in.Text == "" {
			return "Ответь текстом, пожалуйста."
		}
		if step.MinLen > 0 && utf8.RuneCountInString(in.Text) < step.MinLen {
			return "Слишком коротко. Расскажи подробнее (хотя бы пару предложений)."
		}
		return ""
	}
}
