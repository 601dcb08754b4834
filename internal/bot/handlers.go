package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"news_bot/internal/model"
	"news_bot/internal/responder"
)

func (b *Bot) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" || i.Member == nil {
		b.respond(i.Interaction, "This command can only be used in a server.", true)
		return
	}

	ctx := context.Background()
	data := i.ApplicationCommandData()
	b.log.Debug("command", "cmd", data.Name, "guild", i.GuildID, "user", i.Member.User.ID)

	switch data.Name {
	case cmdSetTCG:
		b.handleSetTarget(ctx, i, model.FeedTCG)
	case cmdSetPocket:
		b.handleSetTarget(ctx, i, model.FeedPocket)
	case cmdUpdate:
		b.handleUpdate(ctx, i)
	case cmdSetPattern:
		b.handleSetPattern(ctx, i)
	case cmdRemovePattern:
		b.handleRemovePattern(ctx, i)
	case cmdIgnoreChannel:
		b.handleIgnoreChannel(ctx, i)
	case cmdUnignoreChannel:
		b.handleUnignoreChannel(ctx, i)
	case cmdListIgnored:
		b.handleListIgnored(ctx, i)
	default:
		b.respond(i.Interaction, "Unknown command.", true)
	}
}

func (b *Bot) handleSetTarget(ctx context.Context, i *discordgo.InteractionCreate, kind model.FeedKind) {
	if !hasPermission(i, discordgo.PermissionManageChannels|discordgo.PermissionManageRoles) {
		b.respond(i.Interaction, "You need the Manage Channels and Manage Roles permissions to use this command.", true)
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	channel := opts["channel"].ChannelValue(nil)
	role := opts["role"].RoleValue(nil, "")

	target := &model.FeedTarget{
		GuildID:   i.GuildID,
		Kind:      kind,
		ChannelID: channel.ID,
		RoleID:    role.ID,
	}
	if err := b.store.SetFeedTarget(ctx, target); err != nil {
		b.log.Error("set feed target", "guild", i.GuildID, "kind", kind, "error", err)
		b.respond(i.Interaction, "Failed to save the configuration.", true)
		return
	}

	b.respond(i.Interaction, fmt.Sprintf("Updates will be posted in <#%s> and mention <@&%s>.", channel.ID, role.ID), false)
	b.log.Info("feed target set", "guild", i.GuildID, "kind", kind, "channel", channel.ID, "role", role.ID)
}

func (b *Bot) handleUpdate(ctx context.Context, i *discordgo.InteractionCreate) {
	configured, err := b.hasAnyTarget(ctx, i.GuildID)
	if err != nil {
		b.respond(i.Interaction, "Failed to look up the server configuration.", true)
		return
	}
	if !configured {
		// Guidance only; the cooldown starts with the first real check.
		b.respond(i.Interaction, "No update channel configured. Use /settcg or /setpocket first.", true)
		return
	}

	if wait := b.cooldownRemaining(i.Member.User.ID); wait > 0 {
		b.respond(i.Interaction, fmt.Sprintf("Please wait %d seconds before checking again.", int(wait.Seconds())+1), true)
		return
	}

	b.respond(i.Interaction, "Checking for new articles...", true)

	report := b.dispatch.RunCycleFor(ctx, i.GuildID)
	text := "No new articles found."
	switch {
	case report.Skipped:
		text = "A check is already running, try again in a moment."
	case report.Delivered() > 0:
		text = fmt.Sprintf("Posted %d new article(s).", report.Delivered())
	}
	b.followup(i.Interaction, text)
	b.log.Info("manual update", "guild", i.GuildID, "user", i.Member.User.ID, "delivered", report.Delivered())
}

func (b *Bot) handleSetPattern(ctx context.Context, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionAdministrator) {
		b.respond(i.Interaction, "You must be an administrator to use this command.", true)
		return
	}

	pattern := optionMap(i.ApplicationCommandData().Options)["pattern"].StringValue()
	if err := responder.ValidatePattern(pattern); err != nil {
		b.respond(i.Interaction, fmt.Sprintf("Invalid pattern: %v", err), true)
		return
	}

	if err := b.store.SetPattern(ctx, i.GuildID, pattern); err != nil {
		b.log.Error("set pattern", "guild", i.GuildID, "error", err)
		b.respond(i.Interaction, "Failed to save the pattern.", true)
		return
	}
	b.respond(i.Interaction, fmt.Sprintf("Pattern set to `%s`.", pattern), false)
	b.log.Info("pattern set", "guild", i.GuildID)
}

func (b *Bot) handleRemovePattern(ctx context.Context, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionAdministrator) {
		b.respond(i.Interaction, "You must be an administrator to use this command.", true)
		return
	}

	if err := b.store.RemovePattern(ctx, i.GuildID); err != nil {
		b.log.Error("remove pattern", "guild", i.GuildID, "error", err)
		b.respond(i.Interaction, "Failed to remove the pattern.", true)
		return
	}
	b.respond(i.Interaction, "Pattern removed.", false)
	b.log.Info("pattern removed", "guild", i.GuildID)
}

func (b *Bot) handleIgnoreChannel(ctx context.Context, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionAdministrator) {
		b.respond(i.Interaction, "You must be an administrator to use this command.", true)
		return
	}

	channel := optionMap(i.ApplicationCommandData().Options)["channel"].ChannelValue(nil)
	if err := b.store.AddIgnoredChannel(ctx, i.GuildID, channel.ID); err != nil {
		b.log.Error("add ignored channel", "guild", i.GuildID, "error", err)
		b.respond(i.Interaction, "Failed to update the ignored list.", true)
		return
	}
	b.respond(i.Interaction, fmt.Sprintf("<#%s> has been added to the ignored list.", channel.ID), false)
	b.log.Info("channel ignored", "guild", i.GuildID, "channel", channel.ID)
}

func (b *Bot) handleUnignoreChannel(ctx context.Context, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionAdministrator) {
		b.respond(i.Interaction, "You must be an administrator to use this command.", true)
		return
	}

	channel := optionMap(i.ApplicationCommandData().Options)["channel"].ChannelValue(nil)
	if err := b.store.RemoveIgnoredChannel(ctx, i.GuildID, channel.ID); err != nil {
		b.log.Error("remove ignored channel", "guild", i.GuildID, "error", err)
		b.respond(i.Interaction, "Failed to update the ignored list.", true)
		return
	}
	b.respond(i.Interaction, fmt.Sprintf("<#%s> has been removed from the ignored list.", channel.ID), false)
	b.log.Info("channel unignored", "guild", i.GuildID, "channel", channel.ID)
}

func (b *Bot) handleListIgnored(ctx context.Context, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionAdministrator) {
		b.respond(i.Interaction, "You must be an administrator to use this command.", true)
		return
	}

	channels, err := b.store.ListIgnoredChannels(ctx, i.GuildID)
	if err != nil {
		b.log.Error("list ignored channels", "guild", i.GuildID, "error", err)
		b.respond(i.Interaction, "Failed to read the ignored list.", true)
		return
	}
	b.respond(i.Interaction, FormatIgnoredChannels(channels), len(channels) == 0)
}

func (b *Bot) hasAnyTarget(ctx context.Context, guildID string) (bool, error) {
	for _, kind := range []model.FeedKind{model.FeedTCG, model.FeedPocket} {
		target, err := b.store.GetFeedTarget(ctx, guildID, kind)
		if err != nil {
			b.log.Error("get feed target", "guild", guildID, "kind", kind, "error", err)
			return false, err
		}
		if target != nil {
			return true, nil
		}
	}
	return false, nil
}

func (b *Bot) respond(i *discordgo.Interaction, text string, ephemeral bool) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   flags,
		},
	})
	if err != nil {
		b.log.Error("respond to interaction", "error", err)
	}
}

func (b *Bot) followup(i *discordgo.Interaction, text string) {
	_, err := b.session.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.log.Error("send followup", "error", err)
	}
}

func hasPermission(i *discordgo.InteractionCreate, perm int64) bool {
	return i.Member.Permissions&perm == perm
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}
