package cli

import "github.com/spf13/cobra"

var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Validate a scheduling configuration without solving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfigDoc(args[0])
		if err != nil {
			printJSON(validateResponseDTO{Valid: false, Error: err.Error()})
			return withExitCode(exitConfigError, err)
		}

		if _, err := buildInstance(doc); err != nil {
			printJSON(validateResponseDTO{Valid: false, Error: err.Error()})
			return withExitCode(exitConfigError, err)
		}

		printJSON(validateResponseDTO{Valid: true})
		return nil
	},
}
