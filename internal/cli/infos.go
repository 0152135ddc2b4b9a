package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoMembershipFee = errors.New("membership fee not found on the course page")

func newCoursesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "cours",
		Aliases: []string{"courses", "infos-cours"},
		Short:   "Print course schedules, levels and prices",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(a.format, false)
			if err != nil {
				return err
			}
			lines, err := a.scraper().Courses(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching courses: %w", err)
			}
			return writeLines(a.out, lines, format)
		},
	}
}

func newTariffsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "tarifs",
		Aliases: []string{"prices"},
		Short:   "Print priced offers of the course page",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(a.format, false)
			if err != nil {
				return err
			}
			tariffs, err := a.scraper().Tariffs(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching tariffs: %w", err)
			}
			return writeTariffs(a.out, tariffs, format)
		},
	}
}

func newMembershipCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "adhesion",
		Aliases: []string{"membership"},
		Short:   "Print the yearly membership fee",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(a.format, false)
			if err != nil {
				return err
			}
			fee, ok, err := a.scraper().Membership(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching membership fee: %w", err)
			}
			if !ok {
				return errNoMembershipFee
			}
			if format == FormatJSON {
				return writeJSON(a.out, map[string]string{"adhesion": fee})
			}
			_, err = fmt.Fprintf(a.out, "Adhésion : %s\n", fee)
			return err
		},
	}
}
