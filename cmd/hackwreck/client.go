package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/render"
	"github.com/okian/hackwreck/internal/domain/section"
)

// errInvalidFields reports client-side validation failures before any request.
var errInvalidFields = errors.New("invalid input")

// drive fills a section's fields, submits it once and returns its result.
func drive[Req, Res any](cmd *cobra.Command, m *section.Machine[Req, Res], values map[string]string) (Res, error) {
	var zero Res
	for name, value := range values {
		m.Edit(name, value)
	}
	if !m.Submit(cmd.Context()) {
		errs := m.Errors()
		names := make([]string, 0, len(errs))
		for name := range errs {
			names = append(names, name)
		}
		sort.Strings(names)
		msgs := make([]string, 0, len(names))
		for _, name := range names {
			msgs = append(msgs, fmt.Sprintf("%s: %s", name, errs[name]))
		}
		return zero, fmt.Errorf("%w: %s", errInvalidFields, strings.Join(msgs, "; "))
	}
	if m.Phase() == section.Failed {
		return zero, errors.New(m.Err())
	}
	res, _ := m.Result()
	return res, nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalogue statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stats, err := drive(cmd, section.NewStats(newClient()), nil)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), outputFlag, stats, func() (string, error) {
			return render.StatsDetail(stats), nil
		})
	},
}

var submitStatus string

var submitCmd = &cobra.Command{
	Use:   "submit <github-url>",
	Short: "Archive a repository with an AI-assigned score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := drive(cmd, section.NewSubmission(newClient(), nil), map[string]string{
			section.FieldGitHubURL: args[0],
			section.FieldStatus:    submitStatus,
		})
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), outputFlag, res, func() (string, error) {
			return res.Message, nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search archived projects",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := drive(cmd, section.NewSearch(newClient()), map[string]string{
			section.FieldQuery: strings.Join(args, " "),
		})
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), outputFlag, res, func() (string, error) {
			return render.Projects(res.Projects), nil
		})
	},
}

var (
	trendCategory  string
	trendFramework string
)

var trendsCmd = &cobra.Command{
	Use:   "trends <description>",
	Short: "Compare a project idea against past winners",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := drive(cmd, section.NewTrends(newClient()), map[string]string{
			section.FieldCategory:    trendCategory,
			section.FieldFramework:   trendFramework,
			section.FieldDescription: strings.Join(args, " "),
		})
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), outputFlag, res, func() (string, error) {
			return render.Terminal(res.Analysis)
		})
	},
}

var (
	optimizeHackathon string
	optimizeTheme     string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <github-url>",
	Short: "Score a repository and suggest improvements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := drive(cmd, section.NewOptimize(newClient()), map[string]string{
			section.FieldGitHubURL:      args[0],
			section.FieldHackathonName:  optimizeHackathon,
			section.FieldHackathonTheme: optimizeTheme,
		})
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), outputFlag, res, func() (string, error) {
			return render.Analysis(res).Text(), nil
		})
	},
}

var listWinners bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := newClient()
		var (
			projects []model.Project
			err      error
		)
		if listWinners {
			projects, err = c.Winners(cmd.Context())
		} else {
			projects, err = c.ListProjects(cmd.Context())
		}
		if err != nil {
			return errors.New(section.Message(err))
		}
		return emit(cmd.OutOrStdout(), outputFlag, projects, func() (string, error) {
			return render.Projects(projects), nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove one archived project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id < 1 {
			return fmt.Errorf("%w: project id must be a positive integer", errInvalidFields)
		}
		res, err := newClient().DeleteProject(cmd.Context(), id)
		if err != nil {
			return errors.New(section.Message(err))
		}
		return emit(cmd.OutOrStdout(), outputFlag, res, func() (string, error) {
			return res.Message, nil
		})
	},
}

var wreckMeCmd = &cobra.Command{
	Use:   "wreck-me",
	Short: "Get a brutally honest hackathon pep talk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := newClient().WreckMe(cmd.Context())
		if err != nil {
			return errors.New(section.Message(err))
		}
		return emit(cmd.OutOrStdout(), outputFlag, res, func() (string, error) {
			return render.Terminal(res.Analysis)
		})
	},
}

// readArgsOrStdin joins args, or reads stdin when args is empty or "-".
func readArgsOrStdin(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func init() {
	submitCmd.Flags().StringVarP(&submitStatus, "status", "s", model.OutcomeWinner.Place(), "Winner or Participant")

	trendsCmd.Flags().StringVarP(&trendCategory, "category", "c", "", "Project category (required)")
	trendsCmd.Flags().StringVarP(&trendFramework, "framework", "f", "", "Main framework (required)")

	optimizeCmd.Flags().StringVar(&optimizeHackathon, "hackathon", "", "Hackathon name (required)")
	optimizeCmd.Flags().StringVar(&optimizeTheme, "theme", "", "Hackathon theme")

	listCmd.Flags().BoolVar(&listWinners, "winners", false, "Only list winners, best score first")
}
