package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bingohall/domain/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	colorInfo    = 0x3498DB
	colorSuccess = 0x2ECC71
	colorWarning = 0xF1C40F
)

// ChannelMessenger is the part of a Discord session used to post announcements
type ChannelMessenger interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts round start and finish embeds to a channel
type DiscordAnnouncer struct {
	messenger ChannelMessenger
	channelID string
}

// NewDiscordAnnouncer creates a new announcer for one channel
func NewDiscordAnnouncer(messenger ChannelMessenger, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		messenger: messenger,
		channelID: channelID,
	}
}

// Subscribe registers the announcer on the in-process bus
func (a *DiscordAnnouncer) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeRoundStarted, a.handle)
	bus.Subscribe(events.EventTypeRoundFinished, a.handle)
}

func (a *DiscordAnnouncer) handle(ctx context.Context, event events.Event) {
	var embed *discordgo.MessageEmbed
	switch e := event.(type) {
	case events.RoundStartedEvent:
		embed = RoundStartedEmbed(e)
	case events.RoundFinishedEvent:
		embed = RoundFinishedEmbed(e)
	default:
		return
	}

	if _, err := a.messenger.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"eventType": event.Type(),
			"channelID": a.channelID,
		}).Warn("Failed to post round announcement")
	}
}

// RoundStartedEmbed describes a round that just began
func RoundStartedEmbed(e events.RoundStartedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Bingo round started - %d per card", e.Tier),
		Color:       colorInfo,
		Description: fmt.Sprintf("Room `%s`", shortRoomID(e.RoomID)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Players",
				Value:  mentionList(e.PlayerIDs, 10),
				Inline: false,
			},
			{
				Name:   "Pot",
				Value:  fmt.Sprintf("%d", e.Pot),
				Inline: true,
			},
			{
				Name:   "Draw every",
				Value:  (time.Duration(e.CadenceMs) * time.Millisecond).String(),
				Inline: true,
			},
		},
	}
}

// RoundFinishedEmbed describes the outcome of a round, including cancellations
func RoundFinishedEmbed(e events.RoundFinishedEvent) *discordgo.MessageEmbed {
	color := colorSuccess
	title := fmt.Sprintf("Bingo! Round over - %d per card", e.Tier)
	if e.Cancelled {
		color = colorWarning
		title = "Bingo round cancelled"
	} else if len(e.Winners) == 0 {
		color = colorWarning
	}

	winners := "No winner"
	if len(e.Winners) > 0 {
		lines := make([]string, 0, len(e.Winners))
		for _, w := range e.Winners {
			lines = append(lines, fmt.Sprintf("<@%d> - %d (%s)", w.PlayerID, w.PrizeAmount, w.Pattern))
		}
		winners = strings.Join(lines, "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Color:       color,
		Description: e.Message,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Winners",
				Value:  winners,
				Inline: false,
			},
			{
				Name:   "Numbers drawn",
				Value:  fmt.Sprintf("%d", e.DrawnCount),
				Inline: true,
			},
			{
				Name:   "Players",
				Value:  fmt.Sprintf("%d", e.PlayerCount),
				Inline: true,
			},
		},
	}
}

func mentionList(ids []int64, maxShow int) string {
	if len(ids) == 0 {
		return "Nobody"
	}
	shown := ids
	if len(shown) > maxShow {
		shown = shown[:maxShow]
	}
	mentions := make([]string, len(shown))
	for i, id := range shown {
		mentions[i] = fmt.Sprintf("<@%d>", id)
	}
	out := strings.Join(mentions, ", ")
	if len(ids) > maxShow {
		out += fmt.Sprintf(" ...and %d more", len(ids)-maxShow)
	}
	return out
}

func shortRoomID(roomID string) string {
	if len(roomID) > 8 {
		return roomID[:8]
	}
	return roomID
}
