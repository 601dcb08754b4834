package bot

import (
	"fmt"
	"strings"

	"news_bot/internal/model"
)

const welcomeMessage = `Hey! Here are some tips to get me set up in your server.

News updates:
/settcg <channel> <role> - Set the channel and role for TCG news updates.
/setpocket <channel> <role> - Set the channel and role for Pocket news updates.
/update - Check for news updates now.

Auto-responder:
/setpattern <pattern> - Set the auto-responder pattern.
/removepattern - Remove the auto-responder pattern.
/ignorechannel <channel> - Exempt a channel from the auto-responder.
/unignorechannel <channel> - Remove a channel's exemption.
/listignored - List exempt channels.`

// FormatDescription builds the embed description for an article.
func FormatDescription(a model.Article) string {
	var b strings.Builder
	if a.Summary != "" {
		b.WriteString(a.Summary)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Read more at %s", a.Link)
	return b.String()
}

// RoleMention formats a role mention for a message body.
func RoleMention(roleID string) string {
	return fmt.Sprintf("<@&%s>", roleID)
}

// FormatIgnoredChannels formats the ignored-channel list for display.
func FormatIgnoredChannels(channels []string) string {
	if len(channels) == 0 {
		return "No channels are currently ignored."
	}
	var b strings.Builder
	b.WriteString("Ignored channels:\n")
	for _, id := range channels {
		fmt.Fprintf(&b, "<#%s>\n", id)
	}
	return strings.TrimRight(b.String(), "\n")
}
