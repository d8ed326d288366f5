package bot

import "github.com/bwmarrin/discordgo"

func commandDefinitions() []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageServer)
	// Every command reads guild state, so none of them work in DMs.
	dmDisabled := false

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "giveaway",
			Description:              "Start a giveaway 🎉",
			DMPermission:             &dmDisabled,
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "How long the giveaway lasts (e.g., 30s, 5m, 1h, 2d)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "winners",
					Description: "Number of winners",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prize",
					Description: "The prize for the giveaway",
					Required:    true,
				},
			},
		},
		{
			Name:                     "reroll",
			Description:              "Reroll a giveaway winner 🍀",
			DMPermission:             &dmDisabled,
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message_id",
					Description: "The message ID of the original giveaway post",
					Required:    true,
				},
			},
		},
		{
			Name:         "myprofile",
			Description:  "See your server stats 🌸",
			DMPermission: &dmDisabled,
		},
		{
			Name:                     "guildstats",
			Description:              "See server stats 📊",
			DMPermission:             &dmDisabled,
			DefaultMemberPermissions: &manageGuild,
		},
		{
			Name:         "play",
			Description:  "Play a song from SoundCloud! Use a link or search query.",
			DMPermission: &dmDisabled,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "The SoundCloud link or search query",
					Required:    true,
				},
			},
		},
		{
			Name:         "stop",
			Description:  "Stop the music and disconnect 🛑",
			DMPermission: &dmDisabled,
		},
		{
			Name:         "pause",
			Description:  "Pause the music ⏸️",
			DMPermission: &dmDisabled,
		},
		{
			Name:         "resume",
			Description:  "Resume the music ▶️",
			DMPermission: &dmDisabled,
		},
	}
}
