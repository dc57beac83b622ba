package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sangkips/salesbook-api/internal/application/service"
	"github.com/sangkips/salesbook-api/internal/bootstrap"
	"github.com/sangkips/salesbook-api/internal/config"
	"github.com/sangkips/salesbook-api/internal/domain/entity"
	"github.com/sangkips/salesbook-api/pkg/pagination"
	"github.com/sangkips/salesbook-api/pkg/query"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	storePath string
	asJSON    bool
	verbose   bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "salesctl",
		Short:         "Inspect and maintain the sales store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&opts.storePath, "store", "", "Sales JSON file (overrides STORE_PATH and selects the file driver)")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of tables")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log store activity to stderr")

	cmd.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newDeleteCmd(opts),
		newQuoteCmd(opts),
	)
	return cmd
}

// session opens the configured store and returns a service over it
func (o *rootOptions) session() (*service.SaleService, func(), error) {
	log := zap.NewNop()
	if o.verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return nil, nil, err
		}
	}
	zap.ReplaceGlobals(log)

	cfg := config.Load()
	if o.storePath != "" {
		cfg.Store.Driver = config.StoreDriverFile
		cfg.Store.Path = o.storePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	// no catalogue checks from the CLI
	cfg.Catalog.URL = ""

	store, closeStore, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = closeStore()
		_ = log.Sync()
	}
	return bootstrap.NewSaleService(cfg, store, log, nil), cleanup, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		filters  []string
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sales, optionally filtered",
		Example: `  salesctl list --filter customer_name:containsi:alice
  salesctl list --filter date:gte:2024-01-01 --filter date:lte:2024-01-31 --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilters(filters)
			if err != nil {
				return err
			}

			svc, cleanup, err := opts.session()
			if err != nil {
				return err
			}
			defer cleanup()

			sales, meta, err := svc.List(cmd.Context(), f, &pagination.PaginationParams{Page: page, PageSize: pageSize})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, map[string]any{"data": sales, "pagination": meta})
			}

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"ID", "Date", "Invoice", "Customer", "Items", "Total"})
			for _, s := range sales {
				table.Append([]string{
					s.IDString(),
					s.Date.Format("2006-01-02"),
					s.InvoiceNumber,
					s.CustomerName,
					strconv.Itoa(len(s.Products)),
					money(s.Total),
				})
			}
			table.Render()
			fmt.Fprintf(out, "page %d of %d, %d sales\n", meta.Page, meta.PageCount, meta.Total)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as field:operator:value (operators: eqi, containsi, gte, lte)")
	cmd.Flags().IntVar(&page, "page", pagination.DefaultPage, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", pagination.DefaultPageSize, "Sales per page")
	return cmd
}

func parseFilters(args []string) (query.Filters, error) {
	f := query.Filters{}
	for _, arg := range args {
		parts := strings.SplitN(arg, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid filter %q, want field:operator:value", arg)
		}
		op := query.Operator(strings.TrimPrefix(parts[1], "$"))
		if !op.Known() {
			return nil, fmt.Errorf("unknown filter operator %q", parts[1])
		}
		f.Add(parts[0], op, parts[2])
	}
	return f, nil
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := opts.session()
			if err != nil {
				return err
			}
			defer cleanup()

			sale, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, sale)
			}
			printSale(out, sale)
			return nil
		},
	}
}

func printSale(out io.Writer, s *entity.Sale) {
	details := tablewriter.NewWriter(out)
	details.SetHeader([]string{"Field", "Value"})
	details.AppendBulk([][]string{
		{"ID", s.IDString()},
		{"Invoice", s.InvoiceNumber},
		{"Date", s.Date.Format("2006-01-02 15:04")},
		{"Customer", s.CustomerName},
		{"Email", s.CustomerEmail},
		{"Phone", s.CustomerPhone},
	})
	details.Render()

	items := tablewriter.NewWriter(out)
	items.SetHeader([]string{"Product", "Qty", "Price", "Amount"})
	for _, li := range s.Products {
		items.Append([]string{
			li.Product.String(),
			strconv.FormatFloat(li.Quantity, 'f', -1, 64),
			money(li.Price),
			money(li.Amount()),
		})
	}
	items.SetFooter([]string{"", "", "Total", money(s.Total)})
	items.Render()
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := opts.session()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sale %s deleted\n", args[0])
			return nil
		},
	}
}

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	var items []string

	cmd := &cobra.Command{
		Use:     "quote",
		Short:   "Compute invoice totals without storing anything",
		Example: `  salesctl quote --item 1:2:10 --item 2:1:5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := make([]service.LineItemInput, 0, len(items))
			for _, arg := range items {
				parts := strings.Split(arg, ":")
				if len(parts) != 3 {
					return fmt.Errorf("invalid item %q, want product:quantity:price", arg)
				}
				lines = append(lines, service.LineItemInput{Product: parts[0], Quantity: parts[1], Price: parts[2]})
			}

			// quoting never touches the store
			svc := service.NewSaleService(nil, nil, service.SaleServiceConfig{})
			quote, err := svc.Quote(lines)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, quote)
			}

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Subtotal", "Discount", "Tax", "Total"})
			table.Append([]string{
				money(quote.Subtotal),
				money(quote.DiscountAmount),
				money(quote.TaxAmount),
				money(quote.Total),
			})
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&items, "item", nil, "Line item as product:quantity:price")
	return cmd
}
