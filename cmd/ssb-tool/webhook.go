package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Send simulated VCS push events at a build server",
		Long: `Post synthetic push webhook payloads to a running build server, for
exercising the webhook path without a VCS in the loop.`,
		RunE: runWebhook,
	}

	f := cmd.Flags()
	f.String("url", "http://localhost:8080", "Base URL of the build server")
	f.String("secret", "", "Webhook shared secret")
	f.String("repository", "ssb/terraform-vms", "Repository name in the payload")
	f.String("branch", "master", "Branch to report pushes on")
	f.Int("count", 1, "Number of events to send")
	f.Duration("interval", time.Second, "Delay between events")

	return cmd
}

func runWebhook(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("url")
	secret, _ := cmd.Flags().GetString("secret")
	repository, _ := cmd.Flags().GetString("repository")
	branch, _ := cmd.Flags().GetString("branch")
	count, _ := cmd.Flags().GetInt("count")
	interval, _ := cmd.Flags().GetDuration("interval")

	client := &http.Client{Timeout: 30 * time.Second}

	for i := 0; i < count; i++ {
		if i > 0 {
			time.Sleep(interval)
		}

		payload, err := json.Marshal(map[string]string{
			"repository": repository,
			"ref":        "refs/heads/" + branch,
			"commit":     uuid.NewString(),
			"pusher":     "ssb-tool",
		})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
			baseURL+"/api/v1/webhook", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set("X-Webhook-Token", secret)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("event %d failed: %w", i+1, err)
		}
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		fmt.Printf("event %d: %s %s\n", i+1, resp.Status, bytes.TrimSpace(body))
	}
	return nil
}
