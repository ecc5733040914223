package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yanizio/trailhead/internal/generation"
	"github.com/yanizio/trailhead/internal/progress"
)

func generateCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate the site (incremental unless a full build is needed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.orch.Run(cmd.Context(), generation.Options{ForceFull: full})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s generation %s: %d changed in %s\n",
				res.Mode, res.Version.Format("2006-01-02 15:04:05"), len(res.Changed), res.Duration.Round(time.Millisecond))
			printReturns(out, res.Returns)
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "rebuild every page")
	return cmd
}

func processCmd() *cobra.Command {
	var forEmail bool
	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Replace the bracket codes in a file (or stdin) and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			sink := progress.Func(func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) })
			process := a.codes.ProcessForSite
			if forEmail {
				process = a.codes.ProcessForEmail
			}
			out, err := process(cmd.Context(), string(raw), sink)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&forEmail, "email", false, "use the email pipeline")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report references to missing content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			returns, err := a.orch.Check(cmd.Context())
			if err != nil {
				return err
			}
			printReturns(cmd.OutOrStdout(), returns)
			if len(returns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no broken references")
			}
			return nil
		},
	}
}

func codeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "code <content-id>",
		Short: "Print the bracket code for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("content id: %w", err)
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			c, err := a.store.ByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.codes.Create(c))
			return nil
		},
	}
}

func emailCmd() *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "email <content-id>",
		Short: "Render a record as an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("content id: %w", err)
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			c, err := a.store.ByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			msg, err := a.emails.Build(cmd.Context(), c)
			if err != nil {
				return err
			}
			if text {
				fmt.Fprint(cmd.OutOrStdout(), msg.Text)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.HTML)
			return nil
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print the plain text part")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the content and generation tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			return a.store.Migrate(cmd.Context())
		},
	}
}

func printReturns(w io.Writer, returns []generation.Return) {
	for _, r := range returns {
		fmt.Fprintln(w, "broken:", r.String())
	}
}
