package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/AlessioPiovesan/geni-wrapper/pkg/geni"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current authorization status",
	Long: `Show the current authorization status.

This reads the local token store only; no network call is made.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sdk, err := newSDK(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("App ID:  %s\n", cfg.AppID)
	fmt.Printf("Host:    %s\n", cfg.Host)

	switch sdk.GetStatus() {
	case geni.StatusAuthorized:
		fmt.Printf("Status:  %s\n", text.FgGreen.Sprint("Authorized"))
		if expiry, ok := sdk.TokenExpiry(); ok {
			fmt.Printf("Expires: %s\n", expiry.Local().Format(time.RFC1123))
		}
	default:
		fmt.Printf("Status:  %s\n", text.FgYellow.Sprint("Unauthorized"))
		fmt.Println("Run: geni login")
	}

	return nil
}
