package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// readmeVariants are the filenames probed for a repository README.
var readmeVariants = []string{"README.md", "readme.md", "README.txt", "readme.txt", "README"}

// readmeBranches are probed in order for each filename.
var readmeBranches = []string{"main", "master"}

const githubRawBase = "https://raw.githubusercontent.com"

// ReadmeFetcher resolves a "owner/repo" path to README content. An empty
// string with nil error means no README was found.
type ReadmeFetcher func(ctx context.Context, repoPath string) (string, error)

// GitHubReadmeFetcher fetches READMEs from raw.githubusercontent.com, trying
// the main branch before master and several filename variants.
func GitHubReadmeFetcher(client *http.Client) ReadmeFetcher {
	return func(ctx context.Context, repoPath string) (string, error) {
		return fetchGitHubReadme(ctx, client, githubRawBase, repoPath)
	}
}

func fetchGitHubReadme(ctx context.Context, client *http.Client, base, repoPath string) (string, error) {
	if repoPath == "" {
		return "", nil
	}

	for _, file := range readmeVariants {
		for _, branch := range readmeBranches {
			url := fmt.Sprintf("%s/%s/%s/%s", base, repoPath, branch, file)
			content, ok, err := fetchText(ctx, client, url)
			if err != nil {
				return "", err
			}
			if ok {
				return content, nil
			}
		}
	}
	return "", nil
}

// fetchText gets a URL and returns (body, true) on 200, ("", false) on any
// other status. Transport errors are returned.
func fetchText(ctx context.Context, client *http.Client, url string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("build request %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", false, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), true, nil
}
