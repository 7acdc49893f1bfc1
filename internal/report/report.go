// Package report 生成每日记录的分享文本。
// 模板与历史版本逐字一致，便于既有的分享流程按字符串比对测试。
package report

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sadhanacard/internal/record"
	"github.com/sadhanacard/internal/scoring"
)

const whatsAppBase = "https://wa.me/?text="

// Text 根据记录与得分渲染固定模板的多行文本。纯函数，无副作用。
func Text(r record.DailyRecord, s scoring.Scores) string {
	var b strings.Builder

	b.WriteString("🙏 Today's Sadhana Report 🙏\n\n")

	b.WriteString("📊 SCORES:\n")
	fmt.Fprintf(&b, "Body Score: %d%%\n", s.Body)
	fmt.Fprintf(&b, "Soul Score: %d%%\n", s.Soul)
	fmt.Fprintf(&b, "Overall: %d%%\n\n", s.Overall)

	b.WriteString("⏰ TIMING:\n")
	b.WriteString("Reporting: " + r.Reporting.Status)
	if r.Reporting.Status == record.StatusLate {
		fmt.Fprintf(&b, " (%d mins)", r.Reporting.DelayMinutes)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Sleep: %s | Wake: %s\n",
		orText(r.Body.SleepTime, "Not entered"), orText(r.Body.WakeUpTime, "Not entered"))
	fmt.Fprintf(&b, "Day Rest: %s mins\n\n", orText(r.Body.DayRestMinutes, "0"))

	b.WriteString("🕉️ SPIRITUAL PRACTICES:\n")
	fmt.Fprintf(&b, "Japa: %s rounds (completed: %s)\n",
		orText(r.Soul.JapaRounds, "0"), orText(r.Soul.JapaCompletionTime, "Not entered"))
	fmt.Fprintf(&b, "Reading: %sh - %s\n",
		orText(r.Soul.ReadingHours, "0"), orText(r.Soul.ReadingMaterial, "Not specified"))
	fmt.Fprintf(&b, "Shravanam: %sh - %s\n",
		orText(r.Soul.ShravanamHours, "0"), r.Soul.ShravanamSource)
	if desc := strings.TrimSpace(r.Soul.ShravanamDescription); desc != "" {
		fmt.Fprintf(&b, "(%s)", desc)
	}
	b.WriteString("\n\n")

	b.WriteString("🎯 ENGAGEMENT:\n")
	fmt.Fprintf(&b, "Seva: %sh - %s\n",
		orText(r.Soul.SevaHours, "0"), orText(r.Soul.SevaDescription, "Not specified"))
	fmt.Fprintf(&b, "Spiritual: %sh - %s\n",
		orText(r.Soul.SpiritualEngagementHours, "0"), orText(r.Soul.SpiritualDescription, "Not specified"))
	fmt.Fprintf(&b, "Material: %sh - %s\n",
		orText(r.Body.MaterialEngagementHours, "0"), orText(r.Body.MaterialDescription, "Not specified"))
	fmt.Fprintf(&b, "Work: %sh - %s\n\n",
		orText(r.Body.WorkingHours, "0"), orText(r.Body.WorkingDescription, "Not specified"))

	b.WriteString("🌅 MORNING PROGRAM:\n")
	fmt.Fprintf(&b, "Chanting: %s\n", mark(r.MorningProgram.Chanting))
	fmt.Fprintf(&b, "Sikshatakam: %s\n", mark(r.MorningProgram.Sikshatakam))
	fmt.Fprintf(&b, "Morning Class: %s\n", mark(r.MorningProgram.MorningClass))
	fmt.Fprintf(&b, "Sloka Recitation: %s\n", mark(r.MorningProgram.SlokaRecitation))
	fmt.Fprintf(&b, "Guru Ashtakam: %s\n", mark(r.MorningProgram.MangalAarti.GuruAshtakam))
	fmt.Fprintf(&b, "Narasimha Aarti: %s\n", mark(r.MorningProgram.MangalAarti.NarasimhaAarti))
	fmt.Fprintf(&b, "Tulsi Aarti: %s\n\n", mark(r.MorningProgram.MangalAarti.TulsiAarti))

	b.WriteString("Hare Krishna! 🙏")

	return b.String()
}

// WhatsAppURL 把分享文本百分号编码后拼成 wa.me 深链。
func WhatsAppURL(text string) string {
	return whatsAppBase + url.QueryEscape(text)
}

func orText(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func mark(done bool) string {
	if done {
		return "✅"
	}
	return "❌"
}
