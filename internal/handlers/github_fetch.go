package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// GitHubFetchHandler pulls the first unprocessed issue from a repository.
// Pull requests are skipped (the issues API includes them); dedup keys on
// the issue number.
type GitHubFetchHandler struct {
	dedup  interfaces.ProcessedItemStorage
	logger arbor.ILogger
	// newClient allows tests to inject a client against a stub server
	newClient func(token string) *github.Client
}

// NewGitHubFetchHandler creates the GitHub issues fetch handler
func NewGitHubFetchHandler(dedup interfaces.ProcessedItemStorage, logger arbor.ILogger) *GitHubFetchHandler {
	return &GitHubFetchHandler{
		dedup:  dedup,
		logger: logger,
		newClient: func(token string) *github.Client {
			client := github.NewClient(nil)
			if token != "" {
				client = client.WithAuthToken(token)
			}
			return client
		},
	}
}

func (h *GitHubFetchHandler) Fetch(ctx context.Context, req interfaces.FetchRequest) (*models.FetchResult, error) {
	owner, err := requireString(req.Settings, "owner")
	if err != nil {
		return nil, err
	}
	repo, err := requireString(req.Settings, "repo")
	if err != nil {
		return nil, err
	}

	state := stringSetting(req.Settings, "state")
	if state == "" {
		state = "open"
	}
	var labels []string
	if raw := stringSetting(req.Settings, "labels"); raw != "" {
		for _, l := range strings.Split(raw, ",") {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
	}

	client := h.newClient(stringSetting(req.Settings, "token"))

	opts := &github.IssueListByRepoOptions{
		State:       state,
		Labels:      labels,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 30},
	}

	issues, resp, err := client.Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		if resp != nil && (resp.StatusCode == 401 || resp.StatusCode == 403) {
			return nil, fmt.Errorf("%w: github rejected credentials: %v", engine.ErrAuthentication, err)
		}
		return nil, fmt.Errorf("%w: github issue listing failed: %v", engine.ErrTransientSource, err)
	}

	for _, issue := range issues {
		if issue.IsPullRequest() || issue.Number == nil {
			continue
		}
		itemID := strconv.Itoa(issue.GetNumber())

		processed, err := h.dedup.IsProcessed(ctx, req.FlowStepID, "github", itemID)
		if err != nil {
			return nil, fmt.Errorf("dedup query failed: %w", err)
		}
		if processed {
			continue
		}
		if err := h.dedup.MarkProcessed(ctx, req.FlowStepID, "github", itemID); err != nil {
			if errors.Is(err, interfaces.ErrAlreadyProcessed) {
				continue
			}
			return nil, fmt.Errorf("dedup mark failed: %w", err)
		}

		h.logger.Info().
			Str("repo", owner+"/"+repo).
			Int("issue", issue.GetNumber()).
			Msg("New GitHub issue selected")

		return &models.FetchResult{Item: &models.FetchItem{
			Title: issue.GetTitle(),
			Body:  issue.GetBody(),
			Metadata: map[string]interface{}{
				"source_url":   issue.GetHTMLURL(),
				"issue_number": issue.GetNumber(),
				"author":       issue.GetUser().GetLogin(),
				"created_at":   issue.GetCreatedAt().Format("2006-01-02T15:04:05Z07:00"),
			},
		}}, nil
	}

	return &models.FetchResult{}, nil
}
