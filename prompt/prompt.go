// Package prompt wraps interactive terminal questions.
package prompt

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/tokgrab-cli/tokgrab/source"
)

// Confirm asks the user a yes/no question and returns the answer.
func Confirm(message string, preset bool) (bool, error) {
	question := survey.Confirm{
		Message: message,
		Default: preset,
	}
	var response bool
	err := survey.AskOne(&question, &response)
	return response, err
}

// Overwrite asks whether an existing destination file should be downloaded
// again. Declining keeps the file as is.
func Overwrite(path string) (bool, error) {
	return Confirm(fmt.Sprintf("%s already exists. Download again?", path), false)
}

// Variant asks the user to pick one of the available representations.
func Variant() (source.Variant, error) {
	options := make([]string, 0, len(source.Variants()))
	for _, v := range source.Variants() {
		options = append(options, v.String())
	}

	question := survey.Select{
		Message: "Which variant to download?",
		Options: options,
		Default: source.StandardVideo.String(),
	}
	var response string
	if err := survey.AskOne(&question, &response); err != nil {
		return "", err
	}
	return source.ParseVariant(response)
}
