package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Core palette
	Green       = lipgloss.Color("#00FF41")
	BrightGreen = lipgloss.Color("#39FF14")
	MedGreen    = lipgloss.Color("#00C832")
	DarkGreen   = lipgloss.Color("#008F11")
	DimGreen    = lipgloss.Color("#003B00")
	Cyan        = lipgloss.Color("#00D4AA")
	Amber       = lipgloss.Color("#FFB000")
	Black       = lipgloss.Color("#0D0208")
	MidGray     = lipgloss.Color("#3a3a4e")
	LightGray   = lipgloss.Color("#aaaaaa")
	White       = lipgloss.Color("#e0e0e0")
	Red         = lipgloss.Color("#FF4136")
)

// Accent is the theme colour used for borders, the active tab and the
// tree cursor. SetTheme changes it.
var Accent = Green

var themes = map[string]lipgloss.Color{
	"green": Green,
	"cyan":  Cyan,
	"amber": Amber,
}

// SetTheme switches the accent colour. Unknown names keep the current one.
func SetTheme(name string) {
	if c, ok := themes[name]; ok {
		Accent = c
		buildStyles()
	}
}

var (
	TitleStyle        lipgloss.Style
	TabStyle          lipgloss.Style
	ActiveTabStyle    lipgloss.Style
	StatusBarStyle    lipgloss.Style
	InputBorderStyle  lipgloss.Style
	InputActiveStyle  lipgloss.Style
	PanelStyle        lipgloss.Style
	CursorStyle       lipgloss.Style
	SelectedNodeStyle lipgloss.Style
	RootNodeStyle     lipgloss.Style
	BranchStyle       lipgloss.Style
	TagChipStyle      lipgloss.Style
	SpinnerStyle      lipgloss.Style
	MenuBoxStyle      lipgloss.Style

	// Fixed styles, independent of the accent.
	ConnectorStyle = lipgloss.NewStyle().Foreground(MidGray)
	LeafStyle      = lipgloss.NewStyle().Foreground(White)
	DimStyle       = lipgloss.NewStyle().Foreground(LightGray)
	ConfirmStyle   = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(Red).Bold(true)
	InfoStyle      = lipgloss.NewStyle().Foreground(Cyan)
	HelpStyle      = lipgloss.NewStyle().Foreground(DarkGreen)
	DiffAddStyle   = lipgloss.NewStyle().Foreground(MedGreen)
	DiffDelStyle   = lipgloss.NewStyle().Foreground(Red)
)

func init() { buildStyles() }

func buildStyles() {
	TitleStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	TabStyle = lipgloss.NewStyle().Foreground(LightGray).Padding(0, 2)
	ActiveTabStyle = lipgloss.NewStyle().Background(Accent).Foreground(Black).Bold(true).Padding(0, 2)
	StatusBarStyle = lipgloss.NewStyle().Background(DarkGreen).Foreground(Black).Bold(true).Padding(0, 1)

	InputBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MidGray).
		Padding(0, 1)
	InputActiveStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent).
		Padding(0, 1)
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent).
		Padding(0, 1)
	MenuBoxStyle = PanelStyle

	CursorStyle = lipgloss.NewStyle().Foreground(Black).Background(Accent)
	SelectedNodeStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true).Underline(true)
	RootNodeStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	BranchStyle = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	TagChipStyle = lipgloss.NewStyle().Foreground(Black).Background(Accent).Padding(0, 1)
	SpinnerStyle = lipgloss.NewStyle().Foreground(Accent)
}

const Banner = "zenmap"
