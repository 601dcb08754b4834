package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"news_bot/internal/model"
	"news_bot/internal/pipeline"
)

func commandInteraction(name string, perms int64, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g",
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "user-1"},
			Permissions: perms,
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: opts,
		},
	}}
}

func channelOpt(id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "channel",
		Type:  discordgo.ApplicationCommandOptionChannel,
		Value: id,
	}
}

func roleOpt(id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "role",
		Type:  discordgo.ApplicationCommandOptionRole,
		Value: id,
	}
}

func stringOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: v,
	}
}

func lastResponse(t *testing.T, sess *mockSession) *discordgo.InteractionResponse {
	t.Helper()
	if len(sess.responses) == 0 {
		t.Fatal("no interaction response recorded")
	}
	return sess.responses[len(sess.responses)-1]
}

func TestHandleSetTarget(t *testing.T) {
	b, sess, store := newTestBot(t)

	i := commandInteraction(cmdSetTCG,
		discordgo.PermissionManageChannels|discordgo.PermissionManageRoles,
		channelOpt("chan-1"), roleOpt("role-1"))
	b.handleInteraction(nil, i)

	target, err := store.GetFeedTarget(context.Background(), "g", model.FeedTCG)
	if err != nil {
		t.Fatalf("get target: %v", err)
	}
	want := &model.FeedTarget{GuildID: "g", Kind: model.FeedTCG, ChannelID: "chan-1", RoleID: "role-1"}
	if diff := cmp.Diff(want, target); diff != "" {
		t.Errorf("target mismatch (-want +got):\n%s", diff)
	}

	resp := lastResponse(t, sess)
	if resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0 {
		t.Error("confirmation should be visible to the channel")
	}
}

func TestHandleSetTargetPermissionDenied(t *testing.T) {
	b, sess, store := newTestBot(t)

	// Manage Channels alone is not enough.
	i := commandInteraction(cmdSetPocket, discordgo.PermissionManageChannels,
		channelOpt("chan-1"), roleOpt("role-1"))
	b.handleInteraction(nil, i)

	target, err := store.GetFeedTarget(context.Background(), "g", model.FeedPocket)
	if err != nil {
		t.Fatalf("get target: %v", err)
	}
	if target != nil {
		t.Error("denied command must not store a target")
	}
	resp := lastResponse(t, sess)
	if resp.Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Error("denial should be ephemeral")
	}
}

func TestHandleInteractionOutsideGuild(t *testing.T) {
	b, sess, _ := newTestBot(t)

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: cmdUpdate},
	}}
	b.handleInteraction(nil, i)

	resp := lastResponse(t, sess)
	if !strings.Contains(resp.Data.Content, "server") {
		t.Errorf("unexpected response: %q", resp.Data.Content)
	}
}

func TestHandleUpdate(t *testing.T) {
	b, sess, store := newTestBot(t)
	if err := store.SetFeedTarget(context.Background(), &model.FeedTarget{
		GuildID: "g", Kind: model.FeedTCG, ChannelID: "chan-1",
	}); err != nil {
		t.Fatalf("set target: %v", err)
	}

	dispatch := &mockDispatcher{report: &pipeline.Report{
		NewArticles: map[model.FeedKind]int{model.FeedTCG: 1},
		Guilds:      map[string]pipeline.GuildCount{"g": {Delivered: 1}},
	}}
	b.SetDispatcher(dispatch)

	b.handleInteraction(nil, commandInteraction(cmdUpdate, 0))

	if diff := cmp.Diff([]string{"g"}, dispatch.guilds); diff != "" {
		t.Errorf("dispatched guilds mismatch (-want +got):\n%s", diff)
	}
	if len(sess.followups) != 1 {
		t.Fatalf("expected 1 followup, got %d", len(sess.followups))
	}
	if diff := cmp.Diff("Posted 1 new article(s).", sess.followups[0].Content); diff != "" {
		t.Errorf("followup mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleUpdateWithoutTargets(t *testing.T) {
	b, sess, _ := newTestBot(t)
	dispatch := &mockDispatcher{}
	b.SetDispatcher(dispatch)

	b.handleInteraction(nil, commandInteraction(cmdUpdate, 0))

	if len(dispatch.guilds) != 0 {
		t.Error("unconfigured guild must not trigger a cycle")
	}
	resp := lastResponse(t, sess)
	if !strings.Contains(resp.Data.Content, "/settcg") {
		t.Errorf("expected setup guidance, got %q", resp.Data.Content)
	}
}

func TestHandleUpdateGuidanceDoesNotStartCooldown(t *testing.T) {
	b, sess, store := newTestBot(t)
	dispatch := &mockDispatcher{}
	b.SetDispatcher(dispatch)

	now := time.Now()
	b.now = func() time.Time { return now }

	// Asking before any channel is configured only yields guidance.
	b.handleInteraction(nil, commandInteraction(cmdUpdate, 0))
	if len(dispatch.guilds) != 0 {
		t.Fatal("unconfigured guild must not trigger a cycle")
	}

	if err := store.SetFeedTarget(context.Background(), &model.FeedTarget{
		GuildID: "g", Kind: model.FeedTCG, ChannelID: "chan-1",
	}); err != nil {
		t.Fatalf("set target: %v", err)
	}

	// The first real check runs right away, with no leftover cooldown.
	b.handleInteraction(nil, commandInteraction(cmdUpdate, 0))
	if len(dispatch.guilds) != 1 {
		t.Errorf("expected the first configured update to run, got %d cycles", len(dispatch.guilds))
	}
	resp := lastResponse(t, sess)
	if strings.Contains(resp.Data.Content, "wait") {
		t.Errorf("unexpected cooldown message: %q", resp.Data.Content)
	}
}

func TestHandleUpdateCooldown(t *testing.T) {
	b, sess, store := newTestBot(t)
	if err := store.SetFeedTarget(context.Background(), &model.FeedTarget{
		GuildID: "g", Kind: model.FeedTCG, ChannelID: "chan-1",
	}); err != nil {
		t.Fatalf("set target: %v", err)
	}
	dispatch := &mockDispatcher{}
	b.SetDispatcher(dispatch)

	now := time.Now()
	b.now = func() time.Time { return now }

	b.handleInteraction(nil, commandInteraction(cmdUpdate, 0))
	b.handleInteraction(nil, commandInteraction(cmdUpdate, 0))

	if len(dispatch.guilds) != 1 {
		t.Errorf("cooldown should block the second cycle, got %d", len(dispatch.guilds))
	}
	resp := lastResponse(t, sess)
	if !strings.Contains(resp.Data.Content, "wait") {
		t.Errorf("expected a wait message, got %q", resp.Data.Content)
	}
}

func TestHandleSetPattern(t *testing.T) {
	b, _, store := newTestBot(t)

	i := commandInteraction(cmdSetPattern, discordgo.PermissionAdministrator,
		stringOpt("pattern", "wts|wtb"))
	b.handleInteraction(nil, i)

	pattern, err := store.GetPattern(context.Background(), "g")
	if err != nil {
		t.Fatalf("get pattern: %v", err)
	}
	if diff := cmp.Diff("wts|wtb", pattern); diff != "" {
		t.Errorf("pattern mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleSetPatternInvalid(t *testing.T) {
	b, sess, store := newTestBot(t)

	i := commandInteraction(cmdSetPattern, discordgo.PermissionAdministrator,
		stringOpt("pattern", "wts["))
	b.handleInteraction(nil, i)

	pattern, err := store.GetPattern(context.Background(), "g")
	if err != nil {
		t.Fatalf("get pattern: %v", err)
	}
	if pattern != "" {
		t.Errorf("invalid pattern must not be stored, got %q", pattern)
	}
	resp := lastResponse(t, sess)
	if !strings.Contains(resp.Data.Content, "Invalid pattern") {
		t.Errorf("unexpected response: %q", resp.Data.Content)
	}
}

func TestHandleSetPatternRequiresAdmin(t *testing.T) {
	b, _, store := newTestBot(t)

	i := commandInteraction(cmdSetPattern, discordgo.PermissionManageChannels,
		stringOpt("pattern", "wts"))
	b.handleInteraction(nil, i)

	pattern, err := store.GetPattern(context.Background(), "g")
	if err != nil {
		t.Fatalf("get pattern: %v", err)
	}
	if pattern != "" {
		t.Error("non-admin must not set a pattern")
	}
}

func TestHandleIgnoreAndUnignoreChannel(t *testing.T) {
	b, _, store := newTestBot(t)
	ctx := context.Background()

	b.handleInteraction(nil, commandInteraction(cmdIgnoreChannel,
		discordgo.PermissionAdministrator, channelOpt("trade")))

	channels, err := store.ListIgnoredChannels(ctx, "g")
	if err != nil {
		t.Fatalf("list ignored: %v", err)
	}
	if diff := cmp.Diff([]string{"trade"}, channels); diff != "" {
		t.Errorf("ignored list mismatch (-want +got):\n%s", diff)
	}

	b.handleInteraction(nil, commandInteraction(cmdUnignoreChannel,
		discordgo.PermissionAdministrator, channelOpt("trade")))

	channels, err = store.ListIgnoredChannels(ctx, "g")
	if err != nil {
		t.Fatalf("list ignored: %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("ignored list should be empty, got %v", channels)
	}
}

func TestHandleListIgnored(t *testing.T) {
	b, sess, store := newTestBot(t)
	if err := store.AddIgnoredChannel(context.Background(), "g", "trade"); err != nil {
		t.Fatalf("add ignored: %v", err)
	}

	b.handleInteraction(nil, commandInteraction(cmdListIgnored, discordgo.PermissionAdministrator))

	resp := lastResponse(t, sess)
	if !strings.Contains(resp.Data.Content, "<#trade>") {
		t.Errorf("unexpected response: %q", resp.Data.Content)
	}
}
