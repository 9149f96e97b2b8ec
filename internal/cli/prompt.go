package cli

import (
	"errors"
	"strings"

	"github.com/peterh/liner"
)

// confirm asks a yes/no question on the terminal. Defaults to no; Ctrl-C
// aborts and counts as no.
func confirm(question string) (bool, error) {
	l := liner.NewLiner()
	defer func() { _ = l.Close() }()

	l.SetCtrlCAborts(true)

	answer, err := l.Prompt(question + " [y/N] ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return false, nil
		}

		return false, err
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes", nil
}
