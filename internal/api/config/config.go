package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	viper.SetEnvPrefix("BRAINSCRIPT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("engagement.trending_window_days", 7)
	viper.SetDefault("engagement.trending_limit", 10)
	viper.SetDefault("engagement.top_writers_scan", 100)
	viper.SetDefault("engagement.top_writers_limit", 12)
	viper.SetDefault("engagement.presence_window_second", 30)
	viper.SetDefault("engagement.presence_limit", 20)
}

// DefaultEngagement 返回与线上默认值一致的互动配置
func DefaultEngagement() EngagementConfig {
	return EngagementConfig{
		TrendingWindowDays:   7,
		TrendingLimit:        10,
		TopWritersScan:       100,
		TopWritersLimit:      12,
		PresenceWindowSecond: 30,
		PresenceLimit:        20,
	}
}
