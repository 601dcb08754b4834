package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"news_bot/internal/model"
)

// SendArticle implements pipeline.Notifier. The role mention goes out as
// a separate message before the embed so default mention suppression on
// embeds does not swallow the ping.
func (b *Bot) SendArticle(channelID string, article model.Article, mentionRoleID string) error {
	if mentionRoleID != "" {
		mention := &discordgo.MessageSend{
			Content: RoleMention(mentionRoleID),
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeRoles},
			},
		}
		if _, err := b.session.ChannelMessageSendComplex(channelID, mention); err != nil {
			return fmt.Errorf("send role mention: %w", err)
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       article.Title,
		URL:         article.Link,
		Description: FormatDescription(article),
	}
	if article.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: article.ImageURL}
	}

	if _, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		return fmt.Errorf("send article embed: %w", err)
	}

	b.log.Info("posted article", "channel", channelID, "title", article.Title, "link", article.Link)
	return nil
}
