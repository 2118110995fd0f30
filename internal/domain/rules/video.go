package rules

import (
	"github.com/jonny/edudiag/internal/domain/engine"
	"github.com/jonny/edudiag/internal/domain/model"
)

func videoRules() []engine.Rule {
	const c = model.CategoryVideo
	return []engine.Rule{
		// video_not_loading
		{
			Name:     "video_not_loading_ie",
			Category: c,
			Clauses:  when(symptom(c, "video_not_loading"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Internet Explorer cannot play the platform's videos. Open the class in Chrome, Firefox, Edge or Safari.", 0.95),
		},
		{
			Name:     "video_not_loading_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "video_not_loading"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Your browser may not support the video player. Use Chrome, Firefox, Edge or Safari.", 0.90),
		},
		{
			Name:     "video_not_loading_poor_network",
			Category: c,
			Clauses:  when(symptom(c, "video_not_loading"), system(modern(), poorNet())),
			Action: engine.Conclude(c, "network",
				"Your connection is too weak to load the video. Move to a stable WiFi or wired network and reload the page.", 0.85),
		},
		{
			Name:     "video_not_loading_stable_network",
			Category: c,
			Clauses:  when(symptom(c, "video_not_loading"), system(modern(), stableNet())),
			Action: engine.Conclude(c, "browser",
				"Clear the browser cache, disable extensions that block content and reload the page.", 0.78),
		},

		// video_buffering
		{
			Name:     "video_buffering_poor_network",
			Category: c,
			Clauses:  when(symptom(c, "video_buffering"), system(poorNet())),
			Action: engine.Conclude(c, "network",
				"The video keeps buffering because of your connection. Lower the video quality or switch to a faster network.", 0.85),
		},
		{
			Name:     "video_buffering_stable_network",
			Category: c,
			Clauses:  when(symptom(c, "video_buffering"), system(stableNet())),
			Action: engine.Conclude(c, "browser",
				"Close other tabs using bandwidth, clear the browser cache and reload the video.", 0.75),
		},

		// video_quality_poor
		{
			Name:     "video_quality_poor_network",
			Category: c,
			Clauses:  when(symptom(c, "video_quality_poor"), system(poorNet())),
			Action: engine.Conclude(c, "network",
				"The player lowers the quality on slow connections. Switch to a faster network to get HD playback.", 0.85),
		},
		{
			Name:     "video_quality_stable_network",
			Category: c,
			Clauses:  when(symptom(c, "video_quality_poor"), system(stableNet())),
			Action: engine.Conclude(c, "browser",
				"Select a higher quality in the player settings and make sure hardware acceleration is enabled in your browser.", 0.75),
		},

		// audio_issues
		{
			Name:     "video_audio_ie",
			Category: c,
			Clauses:  when(symptom(c, "audio_issues"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"Internet Explorer does not support the audio codec used by the platform. Switch to a modern browser.", 0.92),
		},
		{
			Name:     "video_audio_device",
			Category: c,
			Clauses:  when(symptom(c, "audio_issues"), system(nonLegacy())),
			Action: engine.Conclude(c, "device",
				"Check that your speakers or headphones are connected and selected as the output device, and that the tab is not muted.", 0.78),
		},

		// playback_controls_not_working
		{
			Name:     "video_controls_ie",
			Category: c,
			Clauses:  when(symptom(c, "playback_controls_not_working"), browser(BrowserIE)),
			Action: engine.Conclude(c, "browser",
				"The player controls do not work in Internet Explorer. Use Chrome, Firefox, Edge or Safari.", 0.94),
		},
		{
			Name:     "video_controls_other_browser",
			Category: c,
			Clauses:  when(symptom(c, "playback_controls_not_working"), browser(BrowserOther)),
			Action: engine.Conclude(c, "browser",
				"Your browser may not support the player controls. Use Chrome, Firefox, Edge or Safari.", 0.88),
		},
		{
			Name:     "video_controls_modern",
			Category: c,
			Clauses:  when(symptom(c, "playback_controls_not_working"), system(modern())),
			Action: engine.Conclude(c, "browser",
				"Disable browser extensions that alter page scripts and reload the video.", 0.78),
		},

		{
			Name:     "video_server_overload",
			Category: c,
			Clauses: when(
				symptomIn(c, "video_buffering", "video_quality_poor"),
				server(engine.Bind("response_time", "rt")),
			),
			Tests: []engine.Test{intAbove("rt", 1000)},
			Action: engine.Conclude(c, "server",
				"The server is under heavy load. Try watching the video during off-peak hours or contact support.", 0.70),
		},
		{
			Name:     "video_outdated_chrome",
			Category: c,
			Clauses: when(
				symptomIn(c, model.VideoSymptoms...),
				system(engine.Eq("browser", "Chrome"), engine.Bind("browser_version", "version")),
			),
			Tests: []engine.Test{majorBelow("version", 80)},
			Action: engine.Conclude(c, "browser",
				"Your browser version is outdated. Update Chrome to the latest version for better video playback.", 0.80),
		},

		{
			Name:     "video_fallback",
			Category: c,
			Clauses:  when(anySymptom(c), noDiagnosis(c)),
			Action: engine.Conclude(c, model.CauseUnknown,
				"Reload the page and try another supported browser. If it persists, contact support with the class name.", 0.40),
		},
	}
}
