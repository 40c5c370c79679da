package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/chemviz/internal/equipment/client"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
)

func cmdLogin(opts *globalOptions) *cobra.Command {
	var username string
	password := os.Getenv("CHEMVIZ_PASSWORD")
	addFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&username, "username", "u", username, "account name")
		cmd.Flags().StringVarP(&password, "password", "p", password, "account password ($CHEMVIZ_PASSWORD)")
	}
	var cmd = &cobra.Command{
		Use:          "login",
		Short:        "log in and print an api token",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(opts.server)
			if err != nil {
				return err
			}

			cred, err := c.Login(cmd.Context(), username, password)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "logged in as %s until %s\n", cred.Username, cred.ExpiresAt.Local().Format(time.RFC1123))
			fmt.Fprintf(out, "export CHEMVIZ_TOKEN=%s\n", cred.Token)
			return nil
		},
	}
	addFlags(cmd)
	return cmd
}

func cmdLogout(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "logout",
		Short:        "revoke the current api token",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}
			c, err := client.New(opts.server)
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context(), client.Credential{Token: opts.token}); err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func cmdUpload(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "upload <file.csv>",
		Short:        "upload an equipment csv file and print its statistics",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}
			c, err := client.New(opts.server)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			up, err := c.Upload(cmd.Context(), client.Credential{Token: opts.token}, filepath.Base(args[0]), f)
			if err != nil {
				return describe(err)
			}

			printUpload(cmd.OutOrStdout(), up)
			return nil
		},
	}
}

func cmdHistory(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "history",
		Short:        "list your uploads, newest first",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}
			c, err := client.New(opts.server)
			if err != nil {
				return err
			}

			uploads, err := c.History(cmd.Context(), client.Credential{Token: opts.token})
			if err != nil {
				return describe(err)
			}

			printHistory(cmd.OutOrStdout(), uploads)
			return nil
		},
	}
}

func cmdShow(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "show <upload-id>",
		Short:        "print the statistics of one upload",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid upload id %q", args[0])
			}
			c, err := client.New(opts.server)
			if err != nil {
				return err
			}

			up, err := c.Get(cmd.Context(), client.Credential{Token: opts.token}, id)
			if err != nil {
				return describe(err)
			}

			printUpload(cmd.OutOrStdout(), up)
			return nil
		},
	}
}

func cmdDownload(opts *globalOptions) *cobra.Command {
	var output string
	var cmd = &cobra.Command{
		Use:          "download <upload-id>",
		Short:        "fetch the csv file stored for one upload",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid upload id %q", args[0])
			}
			c, err := client.New(opts.server)
			if err != nil {
				return err
			}
			cred := client.Credential{Token: opts.token}

			if output == "" {
				_, err := c.Download(cmd.Context(), cred, id, cmd.OutOrStdout())
				return describe(err)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			n, err := c.Download(cmd.Context(), cred, id, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(output)
				return describe(err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", n, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the file here instead of stdout")
	return cmd
}

func cmdHashPassword() *cobra.Command {
	cost := pkgauth.DefaultCost
	var cmd = &cobra.Command{
		Use:          "hash-password <password>",
		Short:        "print a bcrypt hash for the server's auth.users setting",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := pkgauth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", cost, "bcrypt cost")
	return cmd
}

func describe(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return errors.New("session expired or invalid: run chemvizctl login again")
	}
	return err
}

func printUpload(w io.Writer, up client.Upload) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", up.ID)
	fmt.Fprintf(tw, "File\t%s\n", up.FileName)
	fmt.Fprintf(tw, "Uploaded\t%s\n", up.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "Total equipment\t%d\n", up.Stats.TotalCount)
	fmt.Fprintf(tw, "Average pressure\t%.2f\n", up.Stats.AvgPressure)
	fmt.Fprintf(tw, "Average temperature\t%.2f\n", up.Stats.AvgTemp)
	_ = tw.Flush()

	if len(up.Stats.ChartLabels) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCOUNT")
	for i, label := range up.Stats.ChartLabels {
		count := 0
		if i < len(up.Stats.ChartData) {
			count = up.Stats.ChartData[i]
		}
		fmt.Fprintf(tw, "%s\t%d\n", label, count)
	}
	_ = tw.Flush()
}

func printHistory(w io.Writer, uploads []client.Upload) {
	if len(uploads) == 0 {
		fmt.Fprintln(w, "no uploads yet")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tUPLOADED\tTOTAL\tAVG PRESSURE\tAVG TEMP\tTYPES")
	for _, up := range uploads {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.2f\t%.2f\t%s\n",
			up.ID, up.FileName, up.CreatedAt.Local().Format(time.DateTime),
			up.Stats.TotalCount, up.Stats.AvgPressure, up.Stats.AvgTemp,
			strings.Join(up.Stats.ChartLabels, ","))
	}
	_ = tw.Flush()
}
