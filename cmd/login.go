package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/AlessioPiovesan/geni-wrapper/pkg/geni"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize this client with Geni",
	Long: `Authorize this client with Geni using OAuth.

This command opens your browser for the Geni consent step, waits for the
redirect on a short-lived local listener, and exchanges the authorization
code for an access token.

Examples:
  geni login                       # Authorize with the configured app ID
  geni login --app-id <id>         # Authorize with a specific app ID
  geni login --cookies             # Persist the token across invocations`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sdk, err := newSDK(cfg)
	if err != nil {
		return err
	}

	fmt.Println("Opening your browser for Geni authorization...")

	var flowErr error
	err = sdk.Connect(cmd.Context(), func(result geni.ConnectResult) {
		if result.Err != nil {
			flowErr = result.Err
			return
		}
		fmt.Printf("Status:  %s\n", text.FgGreen.Sprint("Authorized"))
	})
	if err != nil {
		return err
	}
	return flowErr
}
