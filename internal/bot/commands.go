package bot

import "github.com/bwmarrin/discordgo"

// Command names.
const (
	cmdSetTCG          = "settcg"
	cmdSetPocket       = "setpocket"
	cmdUpdate          = "update"
	cmdSetPattern      = "setpattern"
	cmdRemovePattern   = "removepattern"
	cmdIgnoreChannel   = "ignorechannel"
	cmdUnignoreChannel = "unignorechannel"
	cmdListIgnored     = "listignored"
)

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        cmdSetTCG,
		Description: "Set the channel and role for TCG news updates",
		Options:     targetOptions,
	},
	{
		Name:        cmdSetPocket,
		Description: "Set the channel and role for Pocket news updates",
		Options:     targetOptions,
	},
	{
		Name:        cmdUpdate,
		Description: "Check for news updates now",
	},
	{
		Name:        cmdSetPattern,
		Description: "Set the auto-responder pattern",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "pattern",
				Description: "Regular expression to match against messages",
				Required:    true,
			},
		},
	},
	{
		Name:        cmdRemovePattern,
		Description: "Remove the auto-responder pattern",
	},
	{
		Name:        cmdIgnoreChannel,
		Description: "Exempt a channel from the auto-responder",
		Options:     channelOption,
	},
	{
		Name:        cmdUnignoreChannel,
		Description: "Remove a channel's auto-responder exemption",
		Options:     channelOption,
	},
	{
		Name:        cmdListIgnored,
		Description: "List channels exempt from the auto-responder",
	},
}

var targetOptions = []*discordgo.ApplicationCommandOption{
	{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        "channel",
		Description: "Channel to post updates in",
		Required:    true,
	},
	{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "role",
		Description: "Role to mention for updates",
		Required:    true,
	},
}

var channelOption = []*discordgo.ApplicationCommandOption{
	{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        "channel",
		Description: "Channel",
		Required:    true,
	},
}
