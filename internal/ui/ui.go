package ui

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Colors struct {
	Gray100 lipgloss.AdaptiveColor
	Gray400 lipgloss.AdaptiveColor
	Gray500 lipgloss.AdaptiveColor
	Gray600 lipgloss.AdaptiveColor
	Gray700 lipgloss.AdaptiveColor
	Gray800 lipgloss.AdaptiveColor

	Primary400 lipgloss.AdaptiveColor
	Primary500 lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
}

var C = Colors{
	Gray100: lipgloss.AdaptiveColor{Light: "#f4f6f8", Dark: "#161b22"},
	Gray400: lipgloss.AdaptiveColor{Light: "#8896a6", Dark: "#656d76"},
	Gray500: lipgloss.AdaptiveColor{Light: "#6b7785", Dark: "#8b949e"},
	Gray600: lipgloss.AdaptiveColor{Light: "#4a5663", Dark: "#c9d1d9"},
	Gray700: lipgloss.AdaptiveColor{Light: "#2d3843", Dark: "#f0f6fc"},
	Gray800: lipgloss.AdaptiveColor{Light: "#1a2027", Dark: "#f4f6f8"},

	Primary400: lipgloss.AdaptiveColor{Light: "#4da6ff", Dark: "#63b3ed"},
	Primary500: lipgloss.AdaptiveColor{Light: "#1a85ff", Dark: "#3182ce"},

	Success: lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#22c55e"},
	Warning: lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#f59e0b"},
	Error:   lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#ef4444"},
}

type Symbols struct {
	Check string
	Cross string
	Dot   string

	CornerTL string
	CornerTR string
	CornerBL string
	CornerBR string
	Line     string
	Pipe     string
	Spinner  []string
}

var S = Symbols{
	Check: "✓",
	Cross: "✗",
	Dot:   "•",

	CornerTL: "╭",
	CornerTR: "╮",
	CornerBL: "╰",
	CornerBR: "╯",
	Line:     "─",
	Pipe:     "│",
	Spinner:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
}

var (
	H1 = lipgloss.NewStyle().
		Foreground(C.Gray800).
		Bold(true)

	H2 = lipgloss.NewStyle().
		Foreground(C.Gray700).
		Bold(true)

	Body = lipgloss.NewStyle().
		Foreground(C.Gray700)

	BodyMuted = lipgloss.NewStyle().
			Foreground(C.Gray600)

	Code = lipgloss.NewStyle().
		Foreground(C.Gray700).
		Background(C.Gray100).
		Padding(0, 1)

	StatusSuccess = lipgloss.NewStyle().
			Foreground(C.Success).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(C.Warning).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(C.Error).
			Bold(true)

	ButtonPrimary = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}).
			Background(C.Primary500).
			Padding(0, 3).
			Margin(0, 1)

	ButtonGhost = lipgloss.NewStyle().
			Foreground(C.Gray600).
			Padding(0, 1).
			Margin(0, 1)
)

var titleCaser = cases.Title(language.English)

func Title(text string) string {
	return H1.Render(text)
}

func Text(text string) string {
	return Body.Render(text)
}

func Muted(text string) string {
	return BodyMuted.Render(text)
}

func Success(text string) string {
	return StatusSuccess.Render(S.Check + " " + text)
}

func Warning(text string) string {
	return StatusWarning.Render("⚠ " + text)
}

// Label turns a snake_case key into a summary label, e.g. log_level becomes "Log Level".
func Label(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

func ErrorMessage(title string, err ...error) string {
	var b strings.Builder

	b.WriteString(StatusError.Render(S.Cross + " " + title))

	if len(err) > 0 && err[0] != nil {
		if errorMsg := cleanErrorMessage(err[0]); errorMsg != "" {
			b.WriteString("\n")
			b.WriteString(BodyMuted.Render(errorMsg))
		}
	}

	return b.String()
}

func WarningMessage(title string, err ...error) string {
	var b strings.Builder

	b.WriteString(StatusWarning.Render("⚠ " + title))

	if len(err) > 0 && err[0] != nil {
		if errorMsg := cleanErrorMessage(err[0]); errorMsg != "" {
			b.WriteString("\n")
			b.WriteString(BodyMuted.Render(errorMsg))
		}
	}

	return b.String()
}

func ErrorBox(title string, err ...error) string {
	return Box(ErrorMessage(title, err...))
}

// cleanErrorMessage prefers the service's own code and message over the SDK's operation
// error chain, which repeats the request id and HTTP status.
func cleanErrorMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.ErrorMessage(); msg != "" {
			return apiErr.ErrorCode() + ": " + msg
		}
		return apiErr.ErrorCode()
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "failed to retrieve credentials"),
		strings.Contains(errStr, "no EC2 IMDS role found"):
		return "No AWS credentials found - configure a profile or export credentials"
	case strings.Contains(errStr, "context deadline exceeded"):
		return "Request timed out - raise the timeout or check your connection"
	case strings.Contains(errStr, "connection") && strings.Contains(errStr, "refused"):
		return "Cannot connect to AWS - please check your network"
	}
	return errStr
}

func BulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(BodyMuted.Render(S.Dot+" ") + Body.Render(item) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Step renders the numbered header of a pipeline step, e.g. "1. Granting ...".
func Step(n int, message string) string {
	return BodyMuted.Render(fmt.Sprintf("%d. ", n)) + H2.Render(message+"...")
}

func HuhTheme() *huh.Theme {
	theme := huh.ThemeBase()

	theme.Focused.Title = H2
	theme.Focused.Description = BodyMuted
	theme.Focused.ErrorMessage = StatusError
	theme.Focused.FocusedButton = ButtonPrimary
	theme.Focused.BlurredButton = ButtonGhost
	theme.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(C.Primary500)
	theme.Focused.TextInput.Placeholder = BodyMuted
	theme.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(C.Primary500)
	theme.Focused.TextInput.Text = Body

	theme.Blurred.Title = BodyMuted
	theme.Blurred.Description = BodyMuted.Faint(true)
	theme.Blurred.ErrorMessage = StatusError.Faint(true)
	theme.Blurred.TextInput.Cursor = BodyMuted
	theme.Blurred.TextInput.Placeholder = BodyMuted.Faint(true)
	theme.Blurred.TextInput.Prompt = BodyMuted
	theme.Blurred.TextInput.Text = BodyMuted

	return theme
}

func StyledSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: S.Spinner,
		FPS:    10,
	}
	s.Style = lipgloss.NewStyle().Foreground(C.Primary500)
	return s
}

func Box(content string, title ...string) string {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		termWidth = 80
	}

	longestLineLen := 0
	for _, line := range strings.Split(content, "\n") {
		longestLineLen = max(longestLineLen, lipgloss.Width(line))
	}

	const boxOverhead = 4
	const terminalMargin = 2
	maxAllowedContentWidth := max(termWidth-boxOverhead-terminalMargin, 1)
	finalContentWidth := min(longestLineLen, maxAllowedContentWidth)

	lines := strings.Split(lipgloss.NewStyle().Width(finalContentWidth).Render(content), "\n")
	totalBoxWidth := finalContentWidth + 2

	var titleStr string
	var titleLen int
	const titleDashes = 2

	if len(title) > 0 && title[0] != "" {
		titleStr = " " + title[0] + " "
		titleLen = lipgloss.Width(titleStr)
		totalBoxWidth = max(totalBoxWidth, titleLen+2*titleDashes)
	}

	var b strings.Builder
	borderStyle := lipgloss.NewStyle().Foreground(C.Gray500)
	titleStyle := lipgloss.NewStyle().Foreground(C.Primary500)

	if titleLen > 0 {
		rightLen := max(totalBoxWidth-titleLen-titleDashes, 0)
		b.WriteString(borderStyle.Render(S.CornerTL + strings.Repeat(S.Line, titleDashes)))
		b.WriteString(titleStyle.Render(titleStr))
		b.WriteString(borderStyle.Render(strings.Repeat(S.Line, rightLen) + S.CornerTR))
	} else {
		b.WriteString(borderStyle.Render(S.CornerTL + strings.Repeat(S.Line, totalBoxWidth) + S.CornerTR))
	}
	b.WriteString("\n")

	for _, line := range lines {
		padding := max(totalBoxWidth-lipgloss.Width(line)-2, 0)
		b.WriteString(borderStyle.Render(S.Pipe))
		b.WriteString(" " + line + strings.Repeat(" ", padding) + " ")
		b.WriteString(borderStyle.Render(S.Pipe))
		b.WriteString("\n")
	}

	b.WriteString(borderStyle.Render(S.CornerBL + strings.Repeat(S.Line, totalBoxWidth) + S.CornerBR))

	return b.String()
}

func FangTheme() fang.ColorScheme {
	errorFg := lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1a2027"}

	return fang.ColorScheme{
		Base:           C.Gray700,
		Title:          C.Primary500,
		Description:    C.Gray600,
		Codeblock:      C.Gray100,
		Program:        C.Primary400,
		DimmedArgument: C.Gray400,
		Comment:        C.Gray500,
		Flag:           C.Warning,
		FlagDefault:    C.Gray500,
		Command:        C.Success,
		QuotedString:   C.Success,
		Argument:       C.Gray700,
		Help:           C.Gray600,
		Dash:           C.Gray400,
		ErrorHeader:    [2]color.Color{errorFg, C.Error},
		ErrorDetails:   C.Error,
	}
}
