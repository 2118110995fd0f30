package rules

import (
	"github.com/jonny/edudiag/internal/domain/engine"
	"github.com/jonny/edudiag/internal/domain/model"
)

func chatRules() []engine.Rule {
	const c = model.CategoryChat
	return []engine.Rule{
		// messages_not_sending
		{
			Name:     "chat_not_sending_ie",
			Category: c,
			Clauses:  when(symptom(c, "messages_not_sending"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"You are using Internet Explorer. Switch to Chrome, Firefox, Edge or Safari and try sending again.", 0.95),
		},
		{
			Name:     "chat_not_sending_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "messages_not_sending"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Your browser may not be supported. Use Chrome, Firefox, Edge or Safari and try sending again.", 0.90),
		},
		{
			Name:     "chat_not_sending_poor_network",
			Category: c,
			Clauses:  when(symptom(c, "messages_not_sending"), system(modern(), poorNet())),
			Action: engine.Conclude(c, "network",
				"The network is unstable. Switch to WiFi or a cable, or move closer to the router, and retry sending.", 0.85),
		},
		{
			Name:     "chat_not_sending_stable_network",
			Category: c,
			Clauses:  when(symptom(c, "messages_not_sending"), system(modern(), stableNet())),
			Action: engine.Conclude(c, "browser",
				"Refresh the page and log in again. If it continues, try a private window or disable extensions.", 0.75),
		},

		// cannot_see_messages
		{
			Name:     "chat_cannot_see_ie",
			Category: c,
			Clauses:  when(symptom(c, "cannot_see_messages"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Internet Explorer is not supported. Use Chrome, Firefox, Edge or Safari to see the messages.", 0.95),
		},
		{
			Name:     "chat_cannot_see_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "cannot_see_messages"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Switch to a supported browser (Chrome, Firefox, Edge or Safari) and check again.", 0.90),
		},
		{
			Name:     "chat_cannot_see_poor_network",
			Category: c,
			Clauses:  when(symptom(c, "cannot_see_messages"), system(modern(), poorNet())),
			Action: engine.Conclude(c, "network",
				"Unstable connection. Switch to WiFi or Ethernet and reload the chat.", 0.82),
		},
		{
			Name:     "chat_cannot_see_permissions",
			Category: c,
			Clauses:  when(symptom(c, "cannot_see_messages"), system(modern(), stableNet())),
			Action: engine.Conclude(c, "permissions",
				"Check that you have access to the chat and are enrolled in the course. If so, ask the teacher or support to verify your role.", 0.80),
		},

		// notification_issues
		{
			Name:     "chat_notifications_ie",
			Category: c,
			Clauses:  when(symptom(c, "notification_issues"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Internet Explorer does not handle site notifications well. Use Chrome, Firefox, Edge or Safari.", 0.94),
		},
		{
			Name:     "chat_notifications_settings",
			Category: c,
			Clauses:  when(symptom(c, "notification_issues"), system(nonLegacy())),
			Action: engine.Conclude(c, "browser",
				"Enable site notifications in the browser and the operating system (turn off 'Do not disturb') and reload the page.", 0.78),
		},

		// emoji_not_working
		{
			Name:     "chat_emoji_ie",
			Category: c,
			Clauses:  when(symptom(c, "emoji_not_working"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"The browser does not render emoji correctly. Switch to Chrome, Firefox, Edge or Safari.", 0.92),
		},
		{
			Name:     "chat_emoji_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "emoji_not_working"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Use a supported, up-to-date browser (Chrome, Firefox, Edge or Safari) so emoji work properly.", 0.86),
		},
		{
			Name:     "chat_emoji_modern",
			Category: c,
			Clauses:  when(symptom(c, "emoji_not_working"), system(modern())),
			Action: engine.Conclude(c, "browser",
				"Update the browser to the latest version and reload the chat. Also try a private window.", 0.80),
		},

		// chat_lag
		{
			Name:     "chat_lag_ie",
			Category: c,
			Clauses:  when(symptom(c, "chat_lag"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Internet Explorer is slow for the chat. Switch to Chrome, Firefox, Edge or Safari.", 0.92),
		},
		{
			Name:     "chat_lag_poor_network",
			Category: c,
			Clauses:  when(symptom(c, "chat_lag"), system(nonLegacy(), poorNet())),
			Action: engine.Conclude(c, "network",
				"Stop downloads or streaming, move closer to the router or use Ethernet. On mobile data, try a stable WiFi.", 0.80),
		},
		{
			Name:     "chat_lag_stable_network",
			Category: c,
			Clauses:  when(symptom(c, "chat_lag"), system(nonLegacy(), stableNet())),
			Action: engine.Conclude(c, "browser",
				"Close heavy tabs, reload the chat and try a private window. If it continues, try another supported browser.", 0.72),
		},

		{
			Name:     "chat_server_issues",
			Category: c,
			Clauses: when(
				symptomIn(c, "chat_lag", "messages_not_sending"),
				server(engine.Bind("reported_issues", "issues")),
			),
			Tests: []engine.Test{intAbove("issues", 5)},
			Action: engine.Conclude(c, "server",
				"The chat server is experiencing issues. Please be patient and try again later.", 0.80),
		},

		{
			Name:     "chat_fallback",
			Category: c,
			Clauses:  when(anySymptom(c), noDiagnosis(c)),
			Action: engine.Conclude(c, model.CauseUnknown,
				"Reload the page and try a supported browser and another network. If it persists, report it to support.", 0.40),
		},
	}
}
