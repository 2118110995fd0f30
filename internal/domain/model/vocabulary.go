package model

const (
	CategoryLogin   = "login"
	CategoryVideo   = "video"
	CategoryChat    = "chat"
	CategoryContent = "content"
)

var (
	LoginSymptoms = []string{
		"cannot_login",
		"forgot_password",
		"account_locked",
		"invalid_credentials",
		"registration_failed",
	}

	VideoSymptoms = []string{
		"video_not_loading",
		"video_buffering",
		"video_quality_poor",
		"audio_issues",
		"playback_controls_not_working",
	}

	ChatSymptoms = []string{
		"messages_not_sending",
		"cannot_see_messages",
		"notification_issues",
		"emoji_not_working",
		"chat_lag",
	}

	ContentSymptoms = []string{
		"content_not_loading",
		"missing_files",
		"broken_links",
		"formatting_issues",
		"access_denied_to_content",
	}
)

// Categories returns the recognised symptom categories in display order.
func Categories() []string {
	return []string{CategoryLogin, CategoryVideo, CategoryChat, CategoryContent}
}

// Vocabulary returns the recognised descriptions per category. The returned
// map and slices are copies; callers may modify them.
func Vocabulary() map[string][]string {
	return map[string][]string{
		CategoryLogin:   append([]string(nil), LoginSymptoms...),
		CategoryVideo:   append([]string(nil), VideoSymptoms...),
		CategoryChat:    append([]string(nil), ChatSymptoms...),
		CategoryContent: append([]string(nil), ContentSymptoms...),
	}
}

// IsKnownSymptom reports whether description belongs to category's vocabulary.
func IsKnownSymptom(category, description string) bool {
	for _, d := range Vocabulary()[category] {
		if d == description {
			return true
		}
	}
	return false
}
