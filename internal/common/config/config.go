package config

import (
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Discord struct {
		BotToken string `env:"DISCORD_BOT_TOKEN,required"`
		// Emoji users react with to enter a giveaway.
		EntryEmoji string `env:"GIVEAWAY_ENTRY_EMOJI" envDefault:"🎉"`
	}

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Storage struct {
		DataDir      string `env:"DATA_DIR" envDefault:"."`
		GiveawayFile string `env:"GIVEAWAY_DATA_FILE" envDefault:"giveaways.json"`
		MemberFile   string `env:"MEMBER_DATA_FILE" envDefault:"members.json"`
	}

	Giveaway struct {
		// How often the expiration poller scans for elapsed giveaways.
		PollInterval time.Duration `env:"GIVEAWAY_POLL_INTERVAL" envDefault:"5s"`
	}

	Music struct {
		YTDLPPath  string `env:"YTDLP_PATH" envDefault:"yt-dlp"`
		FFmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// Игнорируем ошибку, если .env файл не найден
		// В production окружении переменные могут быть установлены напрямую
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

// GiveawayPath returns the resolved path of the giveaway data file.
func (c *Config) GiveawayPath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.GiveawayFile)
}

// MemberPath returns the resolved path of the member data file.
func (c *Config) MemberPath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.MemberFile)
}
