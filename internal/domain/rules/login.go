package rules

import (
	"github.com/jonny/edudiag/internal/domain/engine"
	"github.com/jonny/edudiag/internal/domain/model"
)

func loginRules() []engine.Rule {
	const c = model.CategoryLogin
	return []engine.Rule{
		// cannot_login
		{
			Name:     "login_cannot_login_ie",
			Category: c,
			Clauses:  when(symptom(c, "cannot_login"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"You are using Internet Explorer. Switch to Chrome, Firefox, Edge or Safari and try again.", 0.95),
		},
		{
			Name:     "login_cannot_login_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "cannot_login"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Your browser may not be supported. Use Chrome, Firefox, Edge or Safari and try again.", 0.90),
		},
		{
			Name:     "login_cannot_login_slow_wifi",
			Category: c,
			Clauses:  when(symptom(c, "cannot_login"), system(modern(), connection("slow_wifi"))),
			Action: engine.Conclude(c, "user",
				"Check your username and password and reset your password if it keeps failing. Your WiFi is unstable: move closer to the router or try Ethernet or mobile data.", 0.85),
		},
		{
			Name:     "login_cannot_login_cellular",
			Category: c,
			Clauses:  when(symptom(c, "cannot_login"), system(modern(), connection("cellular"))),
			Action: engine.Conclude(c, "user",
				"Check your username and password and reset your password if it keeps failing. You are on mobile data: try a more stable WiFi or wired network.", 0.85),
		},
		{
			Name:     "login_cannot_login_stable",
			Category: c,
			Clauses:  when(symptom(c, "cannot_login"), system(modern(), stableNet())),
			Action: engine.Conclude(c, "user",
				"Check your username and password. If it keeps failing, reset your password from 'Forgot your password?'.", 0.86),
		},

		// invalid_credentials
		{
			Name:     "login_invalid_credentials_ie",
			Category: c,
			Clauses:  when(symptom(c, "invalid_credentials"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Internet Explorer is not supported. Switch to Chrome, Firefox, Edge or Safari and enter your credentials again.", 0.95),
		},
		{
			Name:     "login_invalid_credentials_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "invalid_credentials"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Use a supported browser (Chrome, Firefox, Edge or Safari) and enter your username and password again.", 0.90),
		},
		{
			Name:     "login_invalid_credentials_modern",
			Category: c,
			Clauses:  when(symptom(c, "invalid_credentials"), system(modern())),
			Action: engine.Conclude(c, "user",
				"Invalid credentials. Check upper and lower case and that the password is correct; reset it if you forgot it.", 0.90),
		},

		{
			Name:     "login_forgot_password",
			Category: c,
			Clauses:  when(symptom(c, "forgot_password")),
			Action: engine.Conclude(c, "user",
				"Reset your password from 'Forgot your password?'. Check your inbox and spam folder and request a new email if none arrives.", 0.88),
		},
		{
			Name:     "login_account_locked",
			Category: c,
			Clauses:  when(symptom(c, "account_locked")),
			Action: engine.Conclude(c, "user",
				"Your account is locked after too many failed attempts. Wait a few minutes or ask an administrator to unlock it.", 0.93),
		},

		// registration_failed
		{
			Name:     "login_registration_failed_ie",
			Category: c,
			Clauses:  when(symptom(c, "registration_failed"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Internet Explorer is not supported. Switch to Chrome, Firefox, Edge or Safari and register again.", 0.94),
		},
		{
			Name:     "login_registration_failed_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "registration_failed"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Use a supported browser (Chrome, Firefox, Edge or Safari) and retry the registration.", 0.88),
		},
		{
			Name:     "login_registration_failed_modern",
			Category: c,
			Clauses:  when(symptom(c, "registration_failed"), system(modern())),
			Action: engine.Conclude(c, "user",
				"Registration could not be completed. Fill in every field, make sure the email is not already registered and retry.", 0.80),
		},

		{
			Name:     "login_server_down",
			Category: c,
			Clauses:  when(symptom(c, "cannot_login"), server(engine.Eq("is_online", false))),
			Action: engine.Conclude(c, "server",
				"The server appears to be down. Wait and try again later, or contact support if the problem persists.", 0.90),
		},

		{
			Name:     "login_fallback",
			Category: c,
			Clauses:  when(anySymptom(c), noDiagnosis(c)),
			Action: engine.Conclude(c, model.CauseUnknown,
				"Try a supported browser and log in again. If it persists, reset your password.", 0.40),
		},
	}
}
