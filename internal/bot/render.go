package bot

import (
	"fmt"
	"strings"

	"github.com/herozvz07-ctrl/guilder/internal/models"
	"github.com/herozvz07-ctrl/guilder/internal/session"
)

func renderPreview(sess *session.Session) string {
	var b strings.Builder
	b.WriteString("📋 **ТВОЯ АНКЕТА**\n\n")
	fmt.Fprintf(&b, "• Ник: %s\n", sess.Answers["nick"])
	fmt.Fprintf(&b, "• Пояс: %s\n", sess.Answers["timezone"])
	fmt.Fprintf(&b, "• Друзья: %s\n", sess.Answers["friends"])
	fmt.Fprintf(&b, "• Прошлый клан: %s\n", sess.Answers["old_clan"])
	fmt.Fprintf(&b, "• Опыт: %s\n", sess.Answers["experience"])
	b.WriteString("\nВсё верно? Если да, жми кнопку ниже.")
	return b.String()
}

func renderApplication(app *models.Application) string {
	answer := func(key string) string {
		if v, ok := app.Answers[key].(string); ok {
			return v
		}
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 **НОВАЯ ЗАЯВКА @%s**\n\n", app.Handle)
	fmt.Fprintf(&b, "Ник: %s\n", answer("nick"))
	fmt.Fprintf(&b, "Пояс: %s\n", answer("timezone"))
	fmt.Fprintf(&b, "Друзья: %s\n", answer("friends"))
	fmt.Fprintf(&b, "Клан: %s\n", answer("old_clan"))
	fmt.Fprintf(&b, "Цели: %s\n", answer("goals"))
	fmt.Fprintf(&b, "Почему: %s\n", answer("why_us"))
	fmt.Fprintf(&b, "Лидерство: %s\n", answer("leader_role"))
	fmt.Fprintf(&b, "Опыт: %s", answer("experience"))
	return b.String()
}

func renderRoster(snapshot *models.RosterSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛡 **%s** — %d участников, средний уровень %.1f\n\n",
		snapshot.GuildName, len(snapshot.Members), snapshot.AvgLevel)
	for _, m := range snapshot.Members {
		marker := "•"
		if m.Leader {
			marker = "⭐"
		}
		fmt.Fprintf(&b, "%s %s — ур. %d\n", marker, m.Nickname, m.Level)
	}
	return b.String()
}
