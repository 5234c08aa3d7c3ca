package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	SelfPath      string  `json:"selfpath"`
	Port          string  `json:"port"`
	Blocksize     int     `json:"blocksize"`     // 每个格子的像素大小
	Size          int     `json:"size"`          // 地图边长（格子数）
	StartSpeed    float64 `json:"startspeed"`    // 初始速度，每秒tick数
	SpeedIncrease float64 `json:"speedincrease"` // 每吃到一个食物增加的速度
	Sensitivity   float64 `json:"sensitivity"`   // 滑动手势最小位移（像素）
	DBPath        string  `json:"dbpath"`
	Assets        string  `json:"assets"`
	Audio         bool    `json:"audio"`
	WinMetric     string  `json:"winmetric"` // 通关时记录的数值: "length" 或 "score"
}

var (
	instance *AppConfig
	once     sync.Once
)

// Default returns the built-in settings.
func Default() *AppConfig {
	return &AppConfig{
		SelfPath:      "localhost:38870",
		Port:          "38870",
		Blocksize:     40,
		Size:          10,
		StartSpeed:    2,
		SpeedIncrease: 0.2,
		Sensitivity:   20,
		DBPath:        "game.db",
		Assets:        "./assets",
		Audio:         true,
		WinMetric:     "length",
	}
}

// LoadConfig initializes and returns the instance of AppConfig
func LoadConfig(filePath string) *AppConfig {
	once.Do(func() {
		cfg, err := Read(filePath)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", filePath, err)
		}
		instance = cfg
	})
	return instance
}

// Read loads the settings from filePath, writing a default file first when
// none exists. Out-of-range values are replaced by defaults.
func Read(filePath string) (*AppConfig, error) {
	cfg := Default()
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := saveConfig(filePath, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := loadConfig(filePath, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// loadConfig loads the settings from the file
func loadConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", filePath, err)
	}
	return nil
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

func (c *AppConfig) normalize() {
	def := Default()
	if c.Size < 2 {
		log.Printf("config: size %d too small, using %d", c.Size, def.Size)
		c.Size = def.Size
	}
	if c.Blocksize < 4 {
		log.Printf("config: blocksize %d too small, using %d", c.Blocksize, def.Blocksize)
		c.Blocksize = def.Blocksize
	}
	if c.StartSpeed <= 0 {
		c.StartSpeed = def.StartSpeed
	}
	if c.SpeedIncrease < 0 {
		c.SpeedIncrease = def.SpeedIncrease
	}
	if c.Sensitivity < 0 {
		c.Sensitivity = def.Sensitivity
	}
	if c.WinMetric != "length" && c.WinMetric != "score" {
		c.WinMetric = def.WinMetric
	}
}

// GetConfigValue returns the value of the configuration by key
// before LoadConfig every key reads as ""
func GetConfigValue(key string) interface{} {
	if instance == nil {
		return ""
	}
	switch key {
	case "selfpath":
		return instance.SelfPath
	case "port":
		return instance.Port
	case "blocksize":
		return instance.Blocksize
	case "size":
		return instance.Size
	case "startspeed":
		return instance.StartSpeed
	case "speedincrease":
		return instance.SpeedIncrease
	case "sensitivity":
		return instance.Sensitivity
	case "dbpath":
		return instance.DBPath
	case "assets":
		return instance.Assets
	case "audio":
		return instance.Audio
	case "winmetric":
		return instance.WinMetric
	default:
		return ""
	}
}
