package rules

import (
	"github.com/jonny/edudiag/internal/domain/engine"
	"github.com/jonny/edudiag/internal/domain/model"
)

func contentRules() []engine.Rule {
	const c = model.CategoryContent
	return []engine.Rule{
		// content_not_loading
		{
			Name:     "content_not_loading_ie",
			Category: c,
			Clauses:  when(symptom(c, "content_not_loading"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Internet Explorer is not supported. Use Chrome, Firefox, Edge or Safari and try again.", 0.95),
		},
		{
			Name:     "content_not_loading_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "content_not_loading"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Your browser may not be supported. Switch to Chrome, Firefox, Edge or Safari.", 0.90),
		},
		{
			Name:     "content_not_loading_poor_network",
			Category: c,
			Clauses:  when(symptom(c, "content_not_loading"), system(modern(), poorNet())),
			Action: engine.Conclude(c, "network",
				"Unstable connection. Move to a stable WiFi or Ethernet network, or closer to the router, and reload the content.", 0.85),
		},
		{
			Name:     "content_not_loading_stable_network",
			Category: c,
			Clauses:  when(symptom(c, "content_not_loading"), system(modern(), stableNet())),
			Action: engine.Conclude(c, "browser",
				"Reload, try incognito mode or clear cache and cookies. If it continues, try another supported browser.", 0.78),
		},

		{
			Name:     "content_missing_files",
			Category: c,
			Clauses:  when(symptom(c, "missing_files")),
			Action: engine.Conclude(c, "link",
				"Published files are missing. Tell the teacher or support the name of the resource so it can be republished.", 0.85),
		},
		{
			Name:     "content_broken_links",
			Category: c,
			Clauses:  when(symptom(c, "broken_links")),
			Action: engine.Conclude(c, "link",
				"There are broken links. Share the course URL and the resource name so they can be fixed.", 0.85),
		},

		// formatting_issues
		{
			Name:     "content_formatting_ie",
			Category: c,
			Clauses:  when(symptom(c, "formatting_issues"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Formatting breaks in incompatible browsers. Use Chrome, Firefox, Edge or Safari.", 0.92),
		},
		{
			Name:     "content_formatting_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "formatting_issues"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Use a supported, up-to-date browser (Chrome, Firefox, Edge or Safari).", 0.86),
		},
		{
			Name:     "content_formatting_modern",
			Category: c,
			Clauses:  when(symptom(c, "formatting_issues"), system(modern())),
			Action: engine.Conclude(c, "browser",
				"Update the browser, reload and try incognito mode. If it continues, try another supported browser.", 0.78),
		},

		{
			Name:     "content_access_denied",
			Category: c,
			Clauses:  when(symptom(c, "access_denied_to_content")),
			Action: engine.Conclude(c, "permissions",
				"You do not have permission for this resource. Ask the administrator or teacher to verify your enrolment or access.", 0.92),
		},

		{
			Name:     "content_recent_maintenance",
			Category: c,
			Clauses: when(
				symptomIn(c, "broken_links", "missing_files"),
				server(engine.Bind("last_maintenance", "maintenance")),
			),
			Tests: []engine.Test{containsFold("maintenance", "recent")},
			Action: engine.Conclude(c, "server",
				"The platform recently underwent maintenance which may have affected some content. Contact support with details about the missing content.", 0.80),
		},

		{
			Name:     "content_fallback",
			Category: c,
			Clauses:  when(anySymptom(c), noDiagnosis(c)),
			Action: engine.Conclude(c, model.CauseUnknown,
				"Try a supported browser, reload in incognito mode and check the link or your permissions.", 0.40),
		},
	}
}
