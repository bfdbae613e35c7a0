package fetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"
)

// GHClient fetches schema files from private or public GitHub repositories
// through the gh CLI, so its authentication is reused.
type GHClient struct{}

// NewGHClient creates a GHClient.
func NewGHClient() *GHClient {
	return &GHClient{}
}

// parseGitHubURL splits a github:// locator into its components.
// Format: github://owner/repo/path/to/file[@ref]
func (c *GHClient) parseGitHubURL(githubURL string) (owner, repo, path, ref string, err error) {
	if !strings.HasPrefix(githubURL, "github://") {
		return "", "", "", "", fmt.Errorf("invalid GitHub URL format: %s", githubURL)
	}

	urlPath := strings.TrimPrefix(githubURL, "github://")

	parts := strings.Split(urlPath, "@")
	if len(parts) == 2 {
		urlPath = parts[0]
		ref = parts[1]
	}

	pathParts := strings.SplitN(urlPath, "/", 3)
	if len(pathParts) < 3 {
		return "", "", "", "", fmt.Errorf("invalid GitHub URL format: expected github://owner/repo/path/to/file")
	}

	return pathParts[0], pathParts[1], pathParts[2], ref, nil
}

// FetchFile retrieves one file's content via `gh api`. The contents endpoint
// returns base64, so decode before handing back.
func (c *GHClient) FetchFile(ctx context.Context, githubURL string) ([]byte, error) {
	owner, repo, path, ref, err := c.parseGitHubURL(githubURL)
	if err != nil {
		return nil, err
	}

	if err := c.checkGHCommand(); err != nil {
		return nil, err
	}

	apiPath := fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, path)
	if ref != "" {
		apiPath += "?ref=" + ref
	}

	cmd := exec.CommandContext(ctx, "gh", "api", apiPath, "--jq", ".content")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("gh command failed: %s", stderr.String())
		}
		return nil, fmt.Errorf("gh command failed: %w", err)
	}

	encoded := strings.TrimSpace(stdout.String())
	if encoded == "" {
		return nil, fmt.Errorf("empty response from GitHub")
	}

	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 content: %w", err)
	}

	return content, nil
}

// checkGHCommand verifies that the gh CLI is installed and authenticated.
func (c *GHClient) checkGHCommand() error {
	cmd := exec.Command("gh", "auth", "status")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "not found") || strings.Contains(err.Error(), "executable file not found") {
			return fmt.Errorf("gh CLI is not installed. Please install it from https://cli.github.com/")
		}
		if strings.Contains(stderr.String(), "not logged in") {
			return fmt.Errorf("gh CLI is not authenticated. Please run 'gh auth login' first")
		}
		return fmt.Errorf("gh auth check failed: %s", stderr.String())
	}

	return nil
}
