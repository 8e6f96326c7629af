package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	PubChem PubChemConfig
	Chat    ChatConfig
	Assets  AssetConfig
	Log     LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	pubchem, err := loadPubChemConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		PubChem: pubchem,
		Chat:    chat,
		Assets:  loadAssetConfig(),
		Log:     logCfg,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DefaultPubChemBaseURL is the PUG REST root.
const DefaultPubChemBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// PubChemConfig 描述化合物查询服务配置。
type PubChemConfig struct {
	BaseURL string
	// Timeout 为 0 表示不设置超时。
	Timeout   time.Duration
	UserAgent string
}

func loadPubChemConfig() (PubChemConfig, error) {
	timeout, err := parseOptionalIntEnv("PUBCHEM_TIMEOUT")
	if err != nil {
		return PubChemConfig{}, err
	}

	var timeoutDuration time.Duration
	if timeout != nil {
		if *timeout < 0 {
			return PubChemConfig{}, fmt.Errorf("invalid PUBCHEM_TIMEOUT value %d: must not be negative", *timeout)
		}
		timeoutDuration = time.Duration(*timeout) * time.Second
	}

	return PubChemConfig{
		BaseURL:   strings.TrimRight(getEnvOrDefault("PUBCHEM_BASE_URL", DefaultPubChemBaseURL), "/"),
		Timeout:   timeoutDuration,
		UserAgent: getEnvOrDefault("PUBCHEM_USER_AGENT", "chemistry-assistant/1.0"),
	}, nil
}

// ChatConfig 描述会话状态机配置。
type ChatConfig struct {
	// MenuCommand 为空时无法从属性模式返回菜单。
	MenuCommand string
	SessionTTL  time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	menuCommand := "menu"
	if raw, ok := os.LookupEnv("CHAT_MENU_COMMAND"); ok {
		menuCommand = strings.TrimSpace(raw)
	}

	ttl, err := parseDurationEnv("CHAT_SESSION_TTL", 2*time.Hour)
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{MenuCommand: menuCommand, SessionTTL: ttl}, nil
}

// AssetConfig 描述侧边栏静态资源与文案。
type AssetConfig struct {
	Dir      string
	Portrait string
	CV       string
	Sponsors []string

	Title         string
	Bio           string
	Caption       string
	About         string
	CVLabel       string
	CVDownloadAs  string
	AssistantName string
}

func loadAssetConfig() AssetConfig {
	return AssetConfig{
		Dir:           getEnvOrDefault("ASSET_DIR", "assets"),
		Portrait:      getEnvOrDefault("ASSET_PORTRAIT", "portrait.png"),
		CV:            getEnvOrDefault("ASSET_CV", "cv.pdf"),
		Sponsors:      parseListEnv("ASSET_SPONSORS", []string{"sponsor1.png", "sponsor2.png"}),
		Title:         getEnvOrDefault("SIDEBAR_TITLE", "About Me"),
		Bio:           getEnvOrDefault("SIDEBAR_BIO", "A researcher working on chemical detection with AI and quantum chemistry."),
		Caption:       getEnvOrDefault("SIDEBAR_CAPTION", "Principal investigator"),
		About:         getEnvOrDefault("SIDEBAR_ABOUT", "Chemistry Assistant provides compound information from PubChem (https://pubchem.ncbi.nlm.nih.gov/)."),
		CVLabel:       getEnvOrDefault("SIDEBAR_CV_LABEL", "Download CV"),
		CVDownloadAs:  getEnvOrDefault("SIDEBAR_CV_FILENAME", "cv.pdf"),
		AssistantName: getEnvOrDefault("ASSISTANT_NAME", "Chemistry Assistant"),
	}
}

// LogConfig 描述日志输出配置。
type LogConfig struct {
	Level       string
	Format      string
	File        string
	Development bool
}

func loadLogConfig() (LogConfig, error) {
	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console"))
	if format != "console" && format != "json" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}

	file := strings.TrimSpace(os.Getenv("LOG_FILE"))
	if file != "" {
		file = filepath.Clean(file)
	}

	development, err := parseBoolEnv("LOG_DEVELOPMENT", false)
	if err != nil {
		return LogConfig{}, err
	}

	return LogConfig{
		Level:       strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format:      format,
		File:        file,
		Development: development,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseListEnv(key string, defaultValue []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
