package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Careline/internal/domain/checkin"
	"github.com/NordCoder/Careline/internal/domain/notification"
	"github.com/NordCoder/Careline/internal/llm"
)

// Composer builds notification payloads from the memory window: the
// bounded set of most recent check-ins. Template and tone selection is
// deterministic; the optional text generator only rewrites the body and
// any generator failure falls back to the template.
type Composer struct {
	WebAppURL string
	Gen       llm.Client
	Log       *zap.Logger
}

const genSystemPrompt = "You are a warm, supportive well-being companion. " +
	"Write a short, caring email body. Be empathetic and non-judgmental. " +
	"Do not diagnose. Plain text only."

var negativeMoods = map[string]struct{}{
	"stressed":    {},
	"sad":         {},
	"anxious":     {},
	"depressed":   {},
	"tired":       {},
	"overwhelmed": {},
	"frustrated":  {},
	"lonely":      {},
}

func (c *Composer) Compose(ctx context.Context, kind notification.Kind, history []*checkin.Checkin, now time.Time) notification.Payload {
	p := c.template(kind, history, now)

	if c.Gen == nil {
		return p
	}
	res, err := c.Gen.Complete(ctx, genSystemPrompt, c.prompt(kind, history, now))
	if err != nil || strings.TrimSpace(res.Content) == "" {
		if c.Log != nil {
			c.Log.Warn("text generation failed; using template body", zap.String("kind", string(kind)), zap.Error(err))
		}
		return p
	}
	p.Body = strings.TrimSpace(res.Content)
	if c.WebAppURL != "" {
		p.Body += "\n\nCheck in here: " + c.WebAppURL
	}
	return p
}

func (c *Composer) template(kind notification.Kind, history []*checkin.Checkin, now time.Time) notification.Payload {
	switch kind {
	case notification.KindInactivityAlert:
		return notification.Payload{
			Kind:    kind,
			Subject: "We Miss You - Well-Being Check-In",
			Body: "Hi there!\n\n" +
				"I noticed you haven't checked in for a while. I'm a bit worried and want to make sure you're doing okay.\n\n" +
				"Remember, it's completely normal to have ups and downs, and I'm here to support you through all of them.\n\n" +
				c.checkInLine() +
				"You're not alone, and your feelings matter.\n\nYour Careline Companion",
		}

	case notification.KindWelcomeBack:
		away := "a while"
		if last := newest(history); last != nil {
			away = humanizeHours(now.Sub(last.Timestamp))
		}
		return notification.Payload{
			Kind:    kind,
			Subject: "Welcome Back!",
			Body: fmt.Sprintf(
				"Welcome back! It's been %s since your last check-in and I've missed you.\n\n"+
					"How have you been feeling? I'd love to hear.\n\n"+
					"%sYour Careline Companion",
				away, c.checkInLine()),
		}

	default:
		if moodTrendNegative(history) {
			return notification.Payload{
				Kind:    notification.KindPeriodic,
				Subject: "Thinking of You - Check-In Reminder",
				Body: "Hey, just checking in. Things have sounded heavy lately, and I want you to know that's okay.\n\n" +
					"Whatever you're feeling right now is valid. Take a slow breath, and when you're ready, tell me how today is going.\n\n" +
					c.checkInLine() +
					"I'm here for you.\nYour Careline Companion",
			}
		}
		return notification.Payload{
			Kind:    notification.KindPeriodic,
			Subject: "Well-Being Check-In Reminder",
			Body: "Hey! Just checking in. How are you feeling today?\n\n" +
				"Your well-being matters, and I'm here to support you. " +
				"Take a moment to reflect on your feelings and share them with me.\n\n" +
				c.checkInLine() +
				"Take care!\nYour Careline Companion",
		}
	}
}

func (c *Composer) prompt(kind notification.Kind, history []*checkin.Checkin, now time.Time) string {
	var b strings.Builder
	switch kind {
	case notification.KindInactivityAlert:
		b.WriteString("Write a gently concerned check-in email: the user has been silent for a long time.\n")
	case notification.KindWelcomeBack:
		b.WriteString("Write a welcome-back email: the user just returned after a long absence")
		if last := newest(history); last != nil {
			fmt.Fprintf(&b, " of %s", humanizeHours(now.Sub(last.Timestamp)))
		}
		b.WriteString(".\n")
	default:
		b.WriteString("Write a friendly periodic check-in reminder email.\n")
	}
	if moodTrendNegative(history) {
		b.WriteString("Recent moods trend negative, so be extra warm and reassuring.\n")
	}
	if len(history) > 0 {
		b.WriteString("Recent check-ins, oldest first:\n")
		for _, h := range history {
			fmt.Fprintf(&b, "- %s: mood %q, said %q\n", h.Timestamp.Format(time.RFC3339), h.Mood, h.ResponseText)
		}
	}
	return b.String()
}

func (c *Composer) checkInLine() string {
	if c.WebAppURL == "" {
		return ""
	}
	return "Check in here: " + c.WebAppURL + "\n\n"
}

// moodTrendNegative reports whether at least half the window carries a
// negative mood tag.
func moodTrendNegative(history []*checkin.Checkin) bool {
	if len(history) == 0 {
		return false
	}
	neg := 0
	for _, h := range history {
		if _, ok := negativeMoods[strings.ToLower(strings.TrimSpace(h.Mood))]; ok {
			neg++
		}
	}
	return neg*2 >= len(history)
}

func newest(history []*checkin.Checkin) *checkin.Checkin {
	if len(history) == 0 {
		return nil
	}
	return history[len(history)-1]
}

func humanizeHours(d time.Duration) string {
	h := int(d.Hours())
	switch {
	case h < 1:
		return "less than an hour"
	case h == 1:
		return "an hour"
	case h < 48:
		return fmt.Sprintf("%d hours", h)
	default:
		return fmt.Sprintf("%d days", h/24)
	}
}
