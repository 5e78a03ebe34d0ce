package activity

import "strings"

// Category is the semantic category of an inbound activity, used to route it
// to the notification middleware and at most one of the routers.
type Category int

const (
	// CategoryOther covers everything the bot does not act on, including
	// malformed input.
	CategoryOther Category = iota
	// CategoryBotInstalled marks an installation update adding the bot.
	CategoryBotInstalled
	// CategoryBotUninstalled marks an installation update removing the bot.
	CategoryBotUninstalled
	// CategoryTeamRestored marks a conversation update restoring a team.
	CategoryTeamRestored
	// CategoryTeamDeleted marks a conversation update deleting a team.
	CategoryTeamDeleted
	// CategoryMessage marks a plain message activity.
	CategoryMessage
	// CategoryCardActionInvoke marks an adaptive card action invoke.
	CategoryCardActionInvoke
)

// String returns a human readable category name for logging.
func (c Category) String() string {
	switch c {
	case CategoryBotInstalled:
		return "bot_installed"
	case CategoryBotUninstalled:
		return "bot_uninstalled"
	case CategoryTeamRestored:
		return "team_restored"
	case CategoryTeamDeleted:
		return "team_deleted"
	case CategoryMessage:
		return "message"
	case CategoryCardActionInvoke:
		return "card_action_invoke"
	default:
		return "other"
	}
}

// Classify maps an activity to its category. It is a pure function with no
// failure modes: anything it cannot recognize, including a nil activity,
// classifies as CategoryOther.
func Classify(a *Activity) Category {
	if a == nil {
		return CategoryOther
	}

	switch a.Type {
	case TypeInstallationUpdate:
		if strings.EqualFold(a.Action, "add") {
			return CategoryBotInstalled
		}
		return CategoryBotUninstalled
	case TypeConversationUpdate:
		if a.ChannelData == nil {
			return CategoryOther
		}
		switch a.ChannelData.EventType {
		case "teamDeleted":
			return CategoryTeamDeleted
		case "teamRestored":
			return CategoryTeamRestored
		}
	case TypeMessage:
		return CategoryMessage
	case TypeInvoke:
		if a.Name == InvokeNameCardAction {
			return CategoryCardActionInvoke
		}
	}

	return CategoryOther
}
