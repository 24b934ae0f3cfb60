package commands

import (
	"os"

	"bellweaver-backend/internal/components/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Logs in and prints the details of the logged in user as json.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client, err := login(cmd.Context(), env)
		if err != nil {
			serviceutil.Fatal("failed to login", err)
		}
		defer client.Close()

		details, err := client.UserDetails(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch user details", err)
		}
		err = writeJson(os.Stdout, details)
		if err != nil {
			serviceutil.Fatal("failed to write user details", err)
		}
	},
}
