package tui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Skin holds the color palette. Custom skins live under
// <configDir>/skins/<name>.yml; any field left empty falls back to the
// default palette.
type Skin struct {
	Accent  string `yaml:"accent"`
	Border  string `yaml:"border"`
	Muted   string `yaml:"muted"`
	Text    string `yaml:"text"`
	Error   string `yaml:"error"`
	Info    string `yaml:"info"`
	Bars    string `yaml:"bars"`
	Heading string `yaml:"heading"`
}

func defaultSkin() Skin {
	return Skin{
		Accent:  "#00D0A1",
		Border:  "240",
		Muted:   "244",
		Text:    "252",
		Error:   "#FF4444",
		Info:    "#44FF44",
		Bars:    "39",
		Heading: "#49E209",
	}
}

var (
	ColorAccent lipgloss.Color
	ColorBorder lipgloss.Color
	ColorMuted  lipgloss.Color
	ColorText   lipgloss.Color
	ColorError  lipgloss.Color
	ColorInfo   lipgloss.Color
	ColorBars   lipgloss.Color

	titleStyle      lipgloss.Style
	cardStyle       lipgloss.Style
	activeCardStyle lipgloss.Style
	chartTitleStyle lipgloss.Style
	labelStyle      lipgloss.Style
	valueStyle      lipgloss.Style
	errorStyle      lipgloss.Style
	infoStyle       lipgloss.Style
	helpStyle       lipgloss.Style
	barStyle        lipgloss.Style
)

func init() {
	applySkin(defaultSkin())
}

// InitializeSkin loads the named skin and rebuilds the package styles.
// The "default" name never touches the filesystem.
func InitializeSkin(name, configDir string) error {
	skin := defaultSkin()
	if name != "" && name != "default" {
		data, err := os.ReadFile(filepath.Join(configDir, "skins", name+".yml"))
		if err != nil {
			return fmt.Errorf("reading skin %q: %w", name, err)
		}
		var custom Skin
		if err := yaml.Unmarshal(data, &custom); err != nil {
			return fmt.Errorf("parsing skin %q: %w", name, err)
		}
		skin = mergeSkin(skin, custom)
	}
	applySkin(skin)
	return nil
}

func mergeSkin(base, custom Skin) Skin {
	pick := func(override, fallback string) string {
		if override != "" {
			return override
		}
		return fallback
	}
	return Skin{
		Accent:  pick(custom.Accent, base.Accent),
		Border:  pick(custom.Border, base.Border),
		Muted:   pick(custom.Muted, base.Muted),
		Text:    pick(custom.Text, base.Text),
		Error:   pick(custom.Error, base.Error),
		Info:    pick(custom.Info, base.Info),
		Bars:    pick(custom.Bars, base.Bars),
		Heading: pick(custom.Heading, base.Heading),
	}
}

func applySkin(s Skin) {
	ColorAccent = lipgloss.Color(s.Accent)
	ColorBorder = lipgloss.Color(s.Border)
	ColorMuted = lipgloss.Color(s.Muted)
	ColorText = lipgloss.Color(s.Text)
	ColorError = lipgloss.Color(s.Error)
	ColorInfo = lipgloss.Color(s.Info)
	ColorBars = lipgloss.Color(s.Bars)

	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Heading)).Bold(true)
	cardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	activeCardStyle = cardStyle.BorderForeground(ColorAccent)
	chartTitleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	valueStyle = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(ColorError)
	infoStyle = lipgloss.NewStyle().Foreground(ColorInfo)
	helpStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	barStyle = lipgloss.NewStyle().Foreground(ColorBars).Background(ColorBars)
}
