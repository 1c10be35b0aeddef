package dekoi

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// Config is the host-facing configuration, read from TOML.
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Window      WindowConfig      `toml:"window"`
	Renderer    RendererConfig    `toml:"renderer"`
}

type ApplicationConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type WindowConfig struct {
	Title   string `toml:"title"`
	Width   uint32 `toml:"width"`
	Height  uint32 `toml:"height"`
	Backend string `toml:"backend"`
}

type RendererConfig struct {
	ClearColor    [4]float32 `toml:"clear_color"`
	Debug         bool       `toml:"debug"`
	InstanceCount uint32     `toml:"instance_count"`
	LogLevel      string     `toml:"log_level"`
}

const (
	BackendGLFW = "glfw"
	BackendSDL  = "sdl"
)

func DefaultConfig() Config {
	return Config{
		Application: ApplicationConfig{Name: "dekoi", Version: "0.1.0"},
		Window: WindowConfig{
			Title:   "dekoi",
			Width:   800,
			Height:  600,
			Backend: BackendGLFW,
		},
		Renderer: RendererConfig{
			ClearColor:    [4]float32{0.1, 0.1, 0.1, 1},
			InstanceCount: 1,
			LogLevel:      "info",
		},
	}
}

// ParseConfig reads TOML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, withStatus(errors.Wrap(err, "failed to parse the configuration"), StatusInvalidValue)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, withStatus(errors.Wrapf(err, "failed to read %s", path), StatusInvalidValue)
	}
	return ParseConfig(data)
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return newError(StatusInvalidValue, "invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Window.Backend {
	case BackendGLFW, BackendSDL:
	default:
		return newError(StatusInvalidValue, "unknown window backend %q", c.Window.Backend)
	}
	if _, err := ParseVersion(c.Application.Version); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.Renderer.LogLevel); err != nil {
		return err
	}
	return nil
}

// RendererCreateInfo pre-fills the parts of a RendererCreateInfo the
// configuration covers. The config must be valid.
func (c *Config) RendererCreateInfo() RendererCreateInfo {
	version, _ := ParseVersion(c.Application.Version)
	return RendererCreateInfo{
		ApplicationName:    c.Application.Name,
		ApplicationVersion: version,
		SurfaceExtent:      gpu.Extent2D{Width: c.Window.Width, Height: c.Window.Height},
		InstanceCount:      c.Renderer.InstanceCount,
		ClearColor:         c.Renderer.ClearColor,
		Debug:              c.Renderer.Debug,
	}
}
