package config

import (
	"os"
	"strconv"
)

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string)
}

var supportedEnvVars = []envVar{
	{
		// Only here for documentation purposes.  Does not override any values in the config as this environment variable
		// points to where the config should be loaded.  It is handled prior to loading the config.
		name:  "TSUGI_CONFIG_PATH",
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) {}, // Special case, no-op
	},
	{
		name:  "TSUGI_CONFIG_AUTH_TOKEN",
		desc:  "Set the AniList authentication token.  Default: None",
		apply: func(c *Config, s string) { c.Auth.Token = s },
	},
	{
		name:  "TSUGI_CONFIG_AUTH_USERNAME",
		desc:  "Set the AniList username tied to the token.  Default: None",
		apply: func(c *Config, s string) { c.Auth.Username = s },
	},
	{
		name:  "TSUGI_CONFIG_PLAYER_PATH",
		desc:  "Sets the path to the mpv binary.  Default: mpv",
		apply: func(c *Config, s string) { c.Player.Path = s },
	},
	{
		name:  "TSUGI_CONFIG_PLAYER_ARGS",
		desc:  "Sets extra player arguments.  Default: None",
		apply: func(c *Config, s string) { c.Player.Args = s },
	},
	{
		name:  "TSUGI_CONFIG_STREAM_QUALITY",
		desc:  "Sets the preferred stream quality.  One of: 1080, 720, 480.  Default: 1080",
		apply: func(c *Config, s string) { c.Stream.Quality = s },
	},
	{
		name:  "TSUGI_CONFIG_STREAM_TRANSLATION_TYPE",
		desc:  "Sets the translation type.  One of `sub` or `dub`.  Default: sub",
		apply: func(c *Config, s string) { c.Stream.TranslationType = s },
	},
	{
		name: "TSUGI_CONFIG_STREAM_EPISODE_COMPLETE_AT",
		desc: "Sets the watched percentage at which an episode counts as complete.  Default: 85",
		apply: func(c *Config, s string) {
			if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 100 {
				c.Stream.EpisodeCompleteAt = v
			}
		},
	},
	{
		name:  "TSUGI_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) { c.Logging.Level = s },
	},
	{
		name:  "TSUGI_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Logging.FilePath = s },
	},
}

func applyEnvVarOverrides(c *Config) {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.name); value != "" {
			envVar.apply(c, value)
		}
	}
}
