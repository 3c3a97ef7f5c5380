// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"} // Component ids, secondary info
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Hints, help text, footers
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"} // Description/body text
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Input placeholders

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Unfocused borders
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"} // Focused pane border

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Success states
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Warnings
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}

	// Component category colors
	CategoryLayoutColor  = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	CategoryContentColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	CategoryFormColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	CategoryMediaColor   = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	CategoryCustomColor  = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#777777"}

	CategoryLayoutStyle  = lipgloss.NewStyle().Foreground(CategoryLayoutColor)
	CategoryContentStyle = lipgloss.NewStyle().Foreground(CategoryContentColor)
	CategoryFormStyle    = lipgloss.NewStyle().Foreground(CategoryFormColor)
	CategoryMediaStyle   = lipgloss.NewStyle().Foreground(CategoryMediaColor)
	CategoryCustomStyle  = lipgloss.NewStyle().Foreground(CategoryCustomColor)

	// Selection indicator style (used for ">" prefix in the tree)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// Pane borders
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(0, 1)

	FocusedPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(BorderFocusColor).
				Padding(0, 1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	// Prompt label shown above the text input
	PromptLabelStyle = lipgloss.NewStyle().
				Foreground(TextPrimaryColor).
				Bold(true)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)

	// Loading spinner color
	SpinnerColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFF"}
)

// CategoryStyle returns the style for a component category string.
func CategoryStyle(category string) lipgloss.Style {
	switch category {
	case "layout":
		return CategoryLayoutStyle
	case "content":
		return CategoryContentStyle
	case "form":
		return CategoryFormStyle
	case "media":
		return CategoryMediaStyle
	default:
		return CategoryCustomStyle
	}
}

// ApplyTheme applies custom theme colors from configuration.
// Empty strings are ignored, keeping the default values.
func ApplyTheme(muted, errorColor, success string) {
	if muted != "" {
		TextMutedColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
		BorderDefaultColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
	}
	if errorColor != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: errorColor, Dark: errorColor}
	}
	if success != "" {
		StatusSuccessColor = lipgloss.AdaptiveColor{Light: success, Dark: success}
	}
}
