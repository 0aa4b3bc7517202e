package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oksasatya/go-users-contract/pkg/client"
	"github.com/oksasatya/go-users-contract/pkg/contract"
)

type options struct {
	baseURL string
	output  string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "usersctl",
		Short:         "Users API client",
		Long:          `usersctl lists, fetches, creates and searches users through the users API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.output != "json" && o.output != "yaml" {
				return fmt.Errorf("unknown output format %q (json or yaml)", o.output)
			}
			return nil
		},
	}
	defURL := os.Getenv("USERS_API_URL")
	if defURL == "" {
		defURL = "http://localhost:3000/api"
	}
	root.PersistentFlags().StringVar(&o.baseURL, "base-url", defURL, "users API base URL including the /api prefix")
	root.PersistentFlags().StringVarP(&o.output, "output", "o", "yaml", "output format: json or yaml")

	root.AddCommand(
		listCmd(o),
		getCmd(o),
		createCmd(o),
		findCmd(o),
		searchCmd(o),
	)
	return root
}

func (o *options) client() *client.Client {
	return client.New(o.baseURL)
}

func listCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := o.client().List(cmd.Context())
			if err != nil {
				return err
			}
			return o.print(cmd.OutOrStdout(), users)
		},
	}
}

func getCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get a user by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			u, err := o.client().ByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return o.print(cmd.OutOrStdout(), u)
		},
	}
}

func createCmd(o *options) *cobra.Command {
	var in contract.CreateUser
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := o.client().Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			return o.print(cmd.OutOrStdout(), u)
		},
	}
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func findCmd(o *options) *cobra.Command {
	var q contract.FindNamesQuery
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find users whose names contain the given fragments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := o.client().FindNames(cmd.Context(), q)
			if err != nil {
				return err
			}
			return o.print(cmd.OutOrStdout(), users)
		},
	}
	cmd.Flags().StringVar(&q.FirstName, "first-name", "", "first name fragment")
	cmd.Flags().StringVar(&q.LastName, "last-name", "", "last name fragment")
	return cmd
}

func searchCmd(o *options) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Full-text search over users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := o.client().Search(cmd.Context(), contract.SearchQuery{Q: args[0], Size: size})
			if err != nil {
				return err
			}
			return o.print(cmd.OutOrStdout(), users)
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "maximum results (1-50)")
	return cmd
}

// print writes v as JSON or as YAML keyed by the JSON field names.
func (o *options) print(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if o.output == "json" {
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	var plain any
	if err := json.Unmarshal(b, &plain); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plain); err != nil {
		return err
	}
	return enc.Close()
}
