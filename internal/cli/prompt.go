package cli

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

// confirmDestroy asks the operator to confirm a destructive action.
// Anything other than an affirmative answer leaves the topology untouched.
func confirmDestroy(force bool) (bool, error) {
	if force {
		return true, nil
	}

	prompt := promptui.Prompt{
		Label:     "Delete containers AND volumes? All data will be lost [y/N]",
		IsConfirm: true,
	}

	result, err := prompt.Run()
	if err != nil {
		// "n", empty input, and Ctrl+C all land here; none of them confirm.
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}

	result = strings.ToLower(strings.TrimSpace(result))
	return result == "y" || result == "yes", nil
}
