package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/langell/super-league-sub001/internal/pubsub"
	"github.com/spf13/cobra"
)

var (
	role string
	note string
)

func init() {
	membersCmd.Flags().StringVar(&role, "role", "", "Only list members with this role (admin, player, sub)")
	requestCmd.Flags().StringVar(&note, "note", "", "A note for the subs")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(eligibleCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(decodeEventCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var membersCmd = &cobra.Command{
	Use:   "members <league-id>",
	Short: "List the members of a league",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/leagues/" + url.PathEscape(args[0]) + "/members"
		if role != "" {
			endpoint += "?role=" + url.QueryEscape(role)
		}
		return performRequest(http.MethodGet, endpoint, nil)
	},
}

var openCmd = &cobra.Command{
	Use:   "open <league-id>",
	Short: "List the open sub requests of a league",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/leagues/"+url.PathEscape(args[0])+"/sub-requests", nil)
	},
}

var eligibleCmd = &cobra.Command{
	Use:   "eligible <league-id>",
	Short: "List your upcoming slots that can be put up for a sub",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/leagues/"+url.PathEscape(args[0])+"/sub-requests/eligible", nil)
	},
}

var requestCmd = &cobra.Command{
	Use:   "request <match-player-id>",
	Short: "Ask the league's subs to take your slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sub-requests", map[string]string{
			"match_player_id": args[0],
			"note":            note,
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show a sub request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sub-requests/"+url.PathEscape(args[0]), nil)
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept <request-id>",
	Short: "Accept an open sub request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sub-requests/"+url.PathEscape(args[0])+"/accept", nil)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <request-id>",
	Short: "Withdraw your open sub request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sub-requests/"+url.PathEscape(args[0])+"/cancel", nil)
	},
}

var decodeEventCmd = &cobra.Command{
	Use:   "decode-event <base64-payload>",
	Short: "Decode a sub request event pulled from a pubsub subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := base64.StdEncoding.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("payload is not base64: %w", err)
		}
		event, err := pubsub.Decode(data)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(event, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		fmt.Println("match_date:", time.Unix(event.MatchDate, 0).UTC().Format(time.RFC3339))
		return nil
	},
}

func performRequest(method, endpoint string, payload any) error {
	target := host + endpoint
	fmt.Printf("Making request to %s\n", target)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
