package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	apiMethodFlag string
	apiParamFlags []string
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api <path>",
	Short: "Call a platform API endpoint",
	Long: `Call a platform API endpoint with the stored access token.

The path is relative to the API root, e.g. "profile" or "profile-123/immediate-family".
Parameters are passed as repeated --param key=value flags. GET requests encode
them as query parameters; other methods send them as a JSON body.

The response is printed as JSON on stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVarP(&apiMethodFlag, "method", "m", "GET", "HTTP method for the request")
	apiCmd.Flags().StringArrayVarP(&apiParamFlags, "param", "p", nil, "request parameter as key=value (repeatable)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sdk, err := newSDK(cfg)
	if err != nil {
		return err
	}

	params := make(map[string]any)
	for _, p := range apiParamFlags {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid --param %q, expected key=value", p)
		}
		params[key] = value
	}
	if apiMethodFlag != "" {
		params["method"] = strings.ToUpper(apiMethodFlag)
	}

	result, err := sdk.API(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
