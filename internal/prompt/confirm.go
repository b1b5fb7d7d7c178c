package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dario.lol/lfiam/internal/ui"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

var (
	ErrUserCancelled = errors.New("cancelled by user")
	ErrNoAnswer      = errors.New("input ended before an answer was given")

	errInvalidAnswer = errors.New("please answer y(es) or n(o)")
)

// ParseAnswer reads a y/n answer. ok is false for anything that is neither.
func ParseAnswer(s string) (yes bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

// Confirm asks question until it gets a y/n answer. A terminal gets a form, anything else is
// read line by line.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return confirmForm(question)
	}
	return confirmLines(in, out, question)
}

func confirmLines(in io.Reader, out io.Writer, question string) (bool, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, question+" ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return false, fmt.Errorf("reading answer: %w", err)
			}
			return false, ErrNoAnswer
		}
		if yes, ok := ParseAnswer(scanner.Text()); ok {
			return yes, nil
		}
		fmt.Fprintln(out, ui.Warning(errInvalidAnswer.Error()))
	}
}

func confirmForm(question string) (bool, error) {
	var answer string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(question).
				Placeholder("y/n").
				Value(&answer).
				Validate(func(s string) error {
					if _, ok := ParseAnswer(s); !ok {
						return errInvalidAnswer
					}
					return nil
				}),
		),
	).WithTheme(ui.HuhTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrUserCancelled
		}
		return false, err
	}

	yes, _ := ParseAnswer(answer)
	return yes, nil
}
