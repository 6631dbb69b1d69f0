package common

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kairosvote.io/kairos/lib/errors"
)

// PrintFlagsError issues a message on stderr then exits with an error code
func PrintFlagsError(cmd *cobra.Command, flagName string, err error) {
	if err != nil {
		var errorString string
		if kairosError, ok := err.(*errors.Error); ok {
			errorString = kairosError.Message
		} else {
			errorString = err.Error()
		}

		fmt.Fprintf(os.Stderr, "error: invalid '%s'; %s\n\n", flagName, errorString)
	}

	cmd.Help()

	os.Exit(1)
}

func PrintError(cmd *cobra.Command, err error) {
	if err != nil {
		var errorString string
		if kairosError, ok := err.(*errors.Error); ok {
			errorString = kairosError.Message
		} else {
			errorString = err.Error()
		}

		fmt.Fprintf(os.Stderr, "error: %s\n\n", errorString)
	}

	cmd.Help()

	os.Exit(1)
}
