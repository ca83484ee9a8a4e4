package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Combat CombatConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
	SSLMode  string
	Timezone string
}

// CombatConfig 戰鬥即時功能的設定
// 洗版判定的參數與 NPC/token 的預設值都集中在這裡，
// 由 main 注入 CombatService，測試時可以直接覆寫
type CombatConfig struct {
	SpamWindowSeconds  int      // 洗版判定的時間窗（秒）
	SpamMaxMessages    int      // 時間窗內允許的最大訊息數
	SpamPenaltySeconds int      // 禁言時間（秒），冷卻由前端執行
	NPCImages          []string // NPC token 圖片池
	DefaultTokenImage  string   // 角色沒有設定 token 圖片時的預設圖
	TokenTop           string   // token 的初始位置與大小
	TokenLeft          string
	TokenWidth         string
	TokenHeight        string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("db.timezone", "UTC")

	// 戰鬥相關設定的預設值
	viper.SetDefault("combat.spamwindowseconds", 10)
	viper.SetDefault("combat.spammaxmessages", 5)
	viper.SetDefault("combat.spampenaltyseconds", 30)
	viper.SetDefault("combat.npcimages", []string{
		"http://upload.wikimedia.org/wikipedia/commons/thumb/f/f7/Auto_Racing_Black_Box.svg/800px-Auto_Racing_Black_Box.svg.png",
	})
	viper.SetDefault("combat.defaulttokenimage",
		"http://upload.wikimedia.org/wikipedia/commons/thumb/f/f7/Auto_Racing_Black_Box.svg/800px-Auto_Racing_Black_Box.svg.png")
	viper.SetDefault("combat.tokentop", "10%")
	viper.SetDefault("combat.tokenleft", "10%")
	viper.SetDefault("combat.tokenwidth", "10%")
	viper.SetDefault("combat.tokenheight", "10%")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
