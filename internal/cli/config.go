package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rinwao/hakobu/internal/app"
	"github.com/rinwao/hakobu/internal/scheduler"
	"github.com/rinwao/hakobu/internal/webclient"
)

// FileConfig is the on-disk YAML configuration.
type FileConfig struct {
	BaseURL    string `yaml:"base_url"`
	Credential string `yaml:"credential"`
	GroupID    string `yaml:"group_id"`
	StorePath  string `yaml:"store_path"`
	ListenAddr string `yaml:"listen_addr"`

	CheckInterval string `yaml:"check_interval"`

	WebClient     *WebClientConfig `yaml:"web_client"`
	PageWebClient *WebClientConfig `yaml:"page_web_client"`

	WatchDir string `yaml:"watch_dir"`
	LogLevel string `yaml:"log_level"`
}

// WebClientConfig selects an HTTP backend in the config file.
type WebClientConfig struct {
	Backend   string `yaml:"backend"`
	Timeout   string `yaml:"timeout"`
	IdleAfter string `yaml:"idle_after"`
	Headless  *bool  `yaml:"headless"`
}

// DefaultConfigPath returns the XDG-compliant config file location.
func DefaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "hakobu", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "hakobu", "config.yaml"), nil
	}
	return filepath.Join(homeDir, ".config", "hakobu", "config.yaml"), nil
}

// LoadFileConfig reads the YAML config at path. A missing file is not an
// error; defaults apply.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// AppConfig merges the file config over the built-in defaults.
func (fc *FileConfig) AppConfig() (*app.Config, error) {
	cfg := app.DefaultConfig()

	if fc.BaseURL != "" {
		cfg.PlatformCfg.BaseURL = fc.BaseURL
	}
	if fc.Credential != "" {
		cfg.Credential = fc.Credential
	}
	if fc.GroupID != "" {
		cfg.GroupID = fc.GroupID
	}
	if fc.StorePath != "" {
		cfg.StorePath = fc.StorePath
	}
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.CheckInterval != "" {
		d, err := time.ParseDuration(fc.CheckInterval)
		if err != nil {
			return nil, fmt.Errorf("check_interval: %w", err)
		}
		cfg.SchedulerCfg = scheduler.Config{
			Interval:      d,
			MaxSummaryLen: cfg.SchedulerCfg.MaxSummaryLen,
		}
	}

	if fc.WebClient != nil {
		wc, err := fc.WebClient.resolve()
		if err != nil {
			return nil, fmt.Errorf("web_client: %w", err)
		}
		cfg.WebClientCfg = *wc
	}
	if fc.PageWebClient != nil {
		wc, err := fc.PageWebClient.resolve()
		if err != nil {
			return nil, fmt.Errorf("page_web_client: %w", err)
		}
		cfg.PageWebClientCfg = wc
	}

	return cfg, nil
}

func (wcc *WebClientConfig) resolve() (*webclient.Config, error) {
	cfg := &webclient.Config{
		Client:   webclient.ClientNetHTTP,
		Headless: true,
	}
	if wcc.Backend != "" {
		cfg.Client = webclient.Client(wcc.Backend)
	}
	if wcc.Timeout != "" {
		d, err := time.ParseDuration(wcc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if wcc.IdleAfter != "" {
		d, err := time.ParseDuration(wcc.IdleAfter)
		if err != nil {
			return nil, fmt.Errorf("idle_after: %w", err)
		}
		cfg.IdleAfter = d
	}
	if wcc.Headless != nil {
		cfg.Headless = *wcc.Headless
	}
	return cfg, nil
}

const starterConfig = `# hakobu configuration
base_url: "http://localhost:9090"
credential: ""
group_id: ""
store_path: "hakobu.db"
listen_addr: ":8080"
check_interval: "10s"

web_client:
  backend: nethttp

# Uncomment to fetch listing pages with a rendered browser:
# page_web_client:
#   backend: chromedp
#   headless: true

# watch_dir: "/path/to/drop-folder"
log_level: "info"
`

// WriteStarterConfig creates a commented example config at path.
func WriteStarterConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	return os.WriteFile(path, []byte(starterConfig), 0o600)
}
