package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-giveaway-bot/internal/bot"
	"discord-giveaway-bot/internal/common/config"
	"discord-giveaway-bot/internal/common/logger"
	giveawayfile "discord-giveaway-bot/internal/features/giveaway/repository/file"
	giveawayservice "discord-giveaway-bot/internal/features/giveaway/service"
	memberfile "discord-giveaway-bot/internal/features/member/repository/file"
	memberservice "discord-giveaway-bot/internal/features/member/service"
	"discord-giveaway-bot/internal/features/music"
	"discord-giveaway-bot/internal/platform/discord"
	"discord-giveaway-bot/internal/web"
)

func main() {
	cfg := config.Load()

	logger.Init("discord-giveaway-bot", cfg.Debug)
	log := logger.Component("main")

	log.Info().Bool("debug", cfg.Debug).Msg("Starting bot")

	giveawayRepo, err := giveawayfile.NewFileGiveawayRepository(cfg.GiveawayPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open giveaway store")
	}
	memberRepo, err := memberfile.NewFileMemberRepository(cfg.MemberPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open member store")
	}

	members := memberservice.NewMemberService(memberRepo)

	session, err := bot.NewSession(cfg.Discord.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}

	chat := discord.NewClient(session, cfg.Discord.EntryEmoji)
	giveaways := giveawayservice.NewGiveawayService(giveawayRepo, members, chat, cfg.Discord.EntryEmoji)

	expiration := giveawayservice.NewExpirationService(giveaways, giveawayRepo, cfg.Giveaway.PollInterval)
	expiration.Start()

	player := music.NewPlayer(
		session,
		music.NewYTDLPResolver(cfg.Music.YTDLPPath),
		music.NewFFmpegStreamer(cfg.Music.FFmpegPath),
	)

	app := bot.New(session, cfg, giveaways, members, player)
	if err := app.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord")
	}

	server := web.NewServer(cfg, members)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	log.Info().Msg("Bot is running, press Ctrl+C to exit")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	expiration.Stop()

	if err := app.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to close Discord session")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}

	log.Info().Msg("Bye")
}
