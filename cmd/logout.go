package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored Geni access token",
	Long: `Discard the stored Geni access token.

This is a local operation: the token file is removed and the client
becomes unauthorized. It does not revoke the authorization at Geni.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sdk, err := newSDK(cfg)
	if err != nil {
		return err
	}

	if err := sdk.Logout(); err != nil {
		return err
	}

	fmt.Println("Logged out.")
	return nil
}
