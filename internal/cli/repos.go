package cli

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bountyhub/bountyhub/internal/config"
	"github.com/bountyhub/bountyhub/internal/service"
	"github.com/bountyhub/bountyhub/pkg/integrations/github"
	"github.com/bountyhub/bountyhub/pkg/storage"
)

// watchStatusWorkers bounds concurrent webhook lookups when building
// the watched column for the repo picker.
const watchStatusWorkers = 8

// newService wires a bounty service from the config file, returning the
// store so callers can close it.
func (c *CLI) newService(ctx context.Context, configPath string) (*service.Service, storage.Store, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	svc := service.New(store, service.HookConfig{
		URL:    cfg.WebhookURL(),
		Secret: cfg.GitHub.WebhookSecret,
	}, c.Logger)
	return svc, store, cfg, nil
}

// reposCommand creates the repos command with subcommands.
func (c *CLI) reposCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Manage watched repositories",
		Long: `List the repositories you administer and control which of them
carry the BountyHub webhook. Only watched repositories report merges
back to BountyHub.`,
	}

	cmd.AddCommand(c.reposListCommand())
	cmd.AddCommand(c.reposWatchCommand())
	cmd.AddCommand(c.reposUnwatchCommand())

	return cmd
}

// reposListCommand creates the "repos list" subcommand.
func (c *CLI) reposListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List repositories you administer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, _, err := apiClient(ctx)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(ctx, "Fetching repositories...")
			spinner.Start()
			repos, err := client.FetchAdminRepos(ctx)
			if err != nil {
				spinner.StopWithError("Fetch failed")
				return err
			}
			spinner.Stop()
			prog.done(fmt.Sprintf("Fetched %d repositories", len(repos)))

			if len(repos) == 0 {
				printInfo("No repositories with admin access")
				return nil
			}
			for _, r := range repos {
				visibility := ""
				if r.Private {
					visibility = StyleDim.Render(" (private)")
				}
				fmt.Println("  " + StyleValue.Render(r.FullName) + visibility)
			}
			return nil
		},
	}
}

// reposWatchCommand creates the "repos watch" subcommand.
func (c *CLI) reposWatchCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch [owner/repo]",
		Short: "Install the bounty webhook on a repository",
		Long: `Install the BountyHub webhook on a repository you administer.

Without an argument, an interactive picker lists your repositories.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, _, err := apiClient(ctx)
			if err != nil {
				return err
			}

			svc, store, _, err := c.newService(ctx, configPath)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			var owner, repo string
			if len(args) == 1 {
				owner, repo, err = github.ParseRepoRef(args[0])
				if err != nil {
					return err
				}
			} else {
				owner, repo, err = c.pickRepo(ctx, svc, client)
				if err != nil {
					return err
				}
				if owner == "" {
					printInfo("No repository selected")
					return nil
				}
			}

			spinner := newSpinnerWithContext(ctx, "Installing webhook...")
			spinner.Start()
			hook, err := svc.WatchRepo(ctx, client, owner, repo)
			if err != nil {
				spinner.StopWithError("Webhook installation failed")
				return err
			}
			spinner.Stop()

			printSuccess("Watching %s/%s", owner, repo)
			printKeyValue("Hook ID", fmt.Sprintf("%d", hook.ID))
			printKeyValue("Callback", hook.Config.URL)
			printNextStep("Open a bounty", fmt.Sprintf("bountyhub bounty open %s/%s#<issue> --amount 25.00", owner, repo))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	return cmd
}

// reposUnwatchCommand creates the "repos unwatch" subcommand.
func (c *CLI) reposUnwatchCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "unwatch owner/repo",
		Short: "Remove the bounty webhook from a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			owner, repo, err := github.ParseRepoRef(args[0])
			if err != nil {
				return err
			}

			client, _, err := apiClient(ctx)
			if err != nil {
				return err
			}
			svc, store, _, err := c.newService(ctx, configPath)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			if err := svc.UnwatchRepo(ctx, client, owner, repo); err != nil {
				return err
			}
			printSuccess("No longer watching %s/%s", owner, repo)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	return cmd
}

// pickRepo runs the interactive repository picker and returns the
// selection, or empty strings when the user quits without choosing.
func (c *CLI) pickRepo(ctx context.Context, svc *service.Service, client *github.Client) (owner, repo string, err error) {
	spinner := newSpinnerWithContext(ctx, "Fetching repositories...")
	spinner.Start()
	repos, err := client.FetchAdminRepos(ctx)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return "", "", err
	}
	watched := c.watchedStatus(ctx, svc, client, repos)
	spinner.Stop()

	if len(repos) == 0 {
		return "", "", fmt.Errorf("no repositories with admin access")
	}

	model := NewRepoListModel(repos, watched)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return "", "", fmt.Errorf("repository picker: %w", err)
	}

	selected := final.(RepoListModel).Selected
	if selected == nil {
		return "", "", nil
	}
	return github.ParseRepoRef(selected.Repo.FullName)
}

// watchedStatus checks which repos already carry the webhook. Lookups
// run concurrently; failures just leave the repo unmarked.
func (c *CLI) watchedStatus(ctx context.Context, svc *service.Service, client *github.Client, repos []github.Repo) map[string]bool {
	watched := make(map[string]bool, len(repos))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, watchStatusWorkers)

	for _, r := range repos {
		wg.Add(1)
		sem <- struct{}{}
		go func(r github.Repo) {
			defer wg.Done()
			defer func() { <-sem }()

			owner, repo, err := github.ParseRepoRef(r.FullName)
			if err != nil {
				return
			}
			ok, err := svc.IsWatched(ctx, client, owner, repo)
			if err != nil {
				c.Logger.Debug("webhook lookup failed", "repo", r.FullName, "err", err)
				return
			}
			mu.Lock()
			watched[r.FullName] = ok
			mu.Unlock()
		}(r)
	}
	wg.Wait()

	return watched
}
