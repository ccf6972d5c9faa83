package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var adminHTTPClient = &http.Client{Timeout: 15 * time.Second}

// postAdmin calls an admin endpoint and prints the response envelope.
func postAdmin(path string, query url.Values) error {
	target := serverURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodPost, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := adminHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty map[string]interface{}
	if err := json.Unmarshal(body, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		body = out
	}
	fmt.Println(string(body))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

var forceLogoutCmd = &cobra.Command{
	Use:   "force-logout <user-id>",
	Short: "Terminate every session for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postAdmin("/api/v1/admin/users/"+url.PathEscape(args[0])+"/logout", nil)
	},
}

var revokeFamilyCmd = &cobra.Command{
	Use:   "revoke-family <family-id>",
	Short: "Force-revoke a refresh-token family",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postAdmin("/api/v1/admin/families/"+url.PathEscape(args[0])+"/revoke", nil)
	},
}

var revokeDeviceUser string

var revokeDeviceCmd = &cobra.Command{
	Use:   "revoke-device <device-id>",
	Short: "Withdraw trust from a user's device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if revokeDeviceUser == "" {
			return fmt.Errorf("--user is required")
		}
		query := url.Values{"user_id": {revokeDeviceUser}}
		return postAdmin("/api/v1/admin/devices/"+url.PathEscape(args[0])+"/revoke", query)
	},
}

func init() {
	revokeDeviceCmd.Flags().StringVar(&revokeDeviceUser, "user", "", "owner of the device")

	rootCmd.AddCommand(forceLogoutCmd)
	rootCmd.AddCommand(revokeFamilyCmd)
	rootCmd.AddCommand(revokeDeviceCmd)
}
