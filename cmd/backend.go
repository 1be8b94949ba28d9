package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/wetrycode/vmwiz"
)

// sessionError the backend asks the caller to authenticate first
func sessionError(res *vmwiz.Result) error {
	return fmt.Errorf("authentication required: %s", res.RedirectURL)
}

func newOptionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the selectable VM options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				res, err := a.client.FetchVMOptions(cmd.Context(), opts.requestOptions()...)
				if err != nil {
					return err
				}
				if res.SessionExpired() {
					return sessionError(res)
				}
				options, err := vmwiz.DecodeVMOptions(res)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "images: %s\n", strings.Join(options.Images, ", "))
				fmt.Fprintf(out, "cores:  %d-%d\n", options.Cores.Min, options.Cores.Max)
				fmt.Fprintf(out, "ram:    %d-%d GB\n", options.RamGB.Min, options.RamGB.Max)
				fmt.Fprintf(out, "disk:   %d-%d GB\n", options.DiskGB.Min, options.DiskGB.Max)
				return nil
			})
		},
	}
}

func newRequestsCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List VM requests, only pending ones unless --all is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				res, err := a.client.FetchRequests(cmd.Context(), opts.requestOptions()...)
				if err != nil {
					return err
				}
				if res.SessionExpired() {
					return sessionError(res)
				}
				requests, err := vmwiz.DecodeVMRequests(res)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTATUS\tHOSTNAME\tEMAIL\tIMAGE\tCORES\tRAM\tDISK")
				for _, r := range requests {
					if !all && !r.IsPending() {
						continue
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
						r.ID, r.RequestStatus, r.Hostname, r.Email, r.Image, r.Cores, r.RamGB, r.DiskGB)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include accepted and rejected requests")
	return cmd
}

type endpointCheck struct {
	name  string
	fetch func(c *vmwiz.Client, ctx context.Context, opts ...vmwiz.RequestOption) (*vmwiz.Result, error)
}

type checkResult struct {
	name   string
	line   string
	failed bool
}

var endpointChecks = []endpointCheck{
	{"options", (*vmwiz.Client).FetchVMOptions},
	{"requests", (*vmwiz.Client).FetchRequests},
	{"surveys", (*vmwiz.Client).FetchSurveys},
}

// runCheck a session expired answer still proves the backend is up
func runCheck(ctx context.Context, client *vmwiz.Client, p endpointCheck, opts ...vmwiz.RequestOption) checkResult {
	res, err := p.fetch(client, ctx, opts...)
	switch {
	case err != nil:
		return checkResult{name: p.name, line: "FAIL " + err.Error(), failed: true}
	case res.SessionExpired():
		return checkResult{name: p.name, line: "OK authentication required: " + res.RedirectURL}
	case res.Response.Status >= 500:
		return checkResult{name: p.name, line: fmt.Sprintf("FAIL status %d", res.Response.Status), failed: true}
	}
	return checkResult{name: p.name, line: fmt.Sprintf("OK status %d %.3fs", res.Response.Status, res.Response.Delay)}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Call the backend endpoints concurrently, bypassing the options cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				client := vmwiz.NewClient(a.gateway, vmwiz.ClientWithPaths(a.client.Paths()))
				p := pool.NewWithResults[checkResult]()
				for _, ec := range endpointChecks {
					ec := ec
					p.Go(func() checkResult {
						return runCheck(cmd.Context(), client, ec, opts.requestOptions()...)
					})
				}
				results := p.Wait()
				sort.Slice(results, func(i, j int) bool {
					return results[i].name < results[j].name
				})
				failed := 0
				out := cmd.OutOrStdout()
				for _, r := range results {
					fmt.Fprintf(out, "%-8s %s\n", r.name, r.line)
					if r.failed {
						failed++
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d endpoints failed on %s", failed, len(results), a.gateway.BaseURL())
				}
				return nil
			})
		},
	}
}
