package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/fatih/color"
)

var (
	// Colors for different types of output
	titleColor     = color.New(color.FgMagenta, color.Bold) // Bold magenta for titles
	separatorColor = color.New(color.FgHiBlack)             // Dark grey for separators
	successColor   = color.New(color.FgGreen)               // Green for confirmations
	failureColor   = color.New(color.FgRed)                 // Red for failures
	infoColor      = color.New(color.FgCyan)                // Cyan for informational output
	fieldColor     = color.New(color.FgHiBlue)              // Bright blue for field labels
	mutedColor     = color.New(color.FgHiBlack)             // Dark grey for secondary text

	width = goterm.Width()
)

// Width of the terminal.
func Width() int {
	return width
}

// Separator printed to cli.
func Separator() {
	separator := strings.Repeat("-", width)
	separatorColor.Println(separator)
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := (width - len(title)) / 2
	separator1 := strings.Repeat("-", leftWidth)
	separator2 := strings.Repeat("-", width-len(title)-len(separator1))
	output := fmt.Sprintf("%s%s%s", separator1, title, separator2)
	titleColor.Println(output)
}

// Success printed to cli.
func Success(text string, args ...any) {
	successColor.Printf(text, args...)
}

// Failure printed to cli.
func Failure(text string, args ...any) {
	failureColor.Printf(text, args...)
}

// Info printed to cli.
func Info(text string, args ...any) {
	infoColor.Printf(text, args...)
}

// Field prints a labeled value to cli.
func Field(label string, value string) {
	fieldColor.Printf("%s: ", label)
	fmt.Println(value)
}

// Muted printed to cli.
func Muted(text string, args ...any) {
	mutedColor.Printf(text, args...)
}

// QueryUser a yes/no question.
func QueryUser(question string) bool {
	surveyQuestion := &survey.Confirm{
		Message: question,
	}
	confirm := false
	survey.AskOne(surveyQuestion, &confirm)
	return confirm
}
